// Package masking implements the binary mask transforms applied before a
// diffusion run: square dilation (Expand), Gaussian feathering (Feather),
// thresholding, debug overlays and the rectangle descriptor format used by
// the batch harness.
//
// Masks are *image.Gray anchored at the origin. 255 marks pixels to
// regenerate, 0 marks pixels to keep.
package masking
