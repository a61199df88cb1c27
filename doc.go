// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Ryan Johnson

// Package pixeljson converts raster images to JSON documents of RGBA pixels
// and reconstructs images from such documents.
//
// A document carries any combination of file metadata, the original image
// as base64, and a pixels section holding either raw pixels or run-length
// encoded runs of identical pixels. Reconstruction accepts several document
// shapes: a bare pixel array, a pixels section, a top-level data array, or
// only a base64 image.
//
// # Basic Usage
//
//	conv := pixeljson.NewConverterWithOptions(
//		pixeljson.WithLogger(&pixeljson.StandardLogger{}),
//	)
//
//	in, err := pixeljson.InputFromFile("photo.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	doc, err := conv.ImageToDocument(ctx, in, pixeljson.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	data, err := pixeljson.MarshalDocument(doc, true)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := conv.DocumentToImage(ctx, data, 0, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Summary())
//
// # Run-Length Encoding
//
//	runs := pixeljson.Compress(buf.Pixels)
//	pixels := pixeljson.Decompress(runs)
//
// Each run covers at most MaxRunLength pixels.
//
// # Error Handling
//
//	if pixeljson.IsPixelError(err, pixeljson.ErrNoPixelData) {
//		log.Printf("document has no pixels: %v", err)
//	}
package pixeljson
