// Package processing turns an uploaded image and a JSON parameter blob into a
// pipeline run for one of the supported tasks.
//
// Each task has one explicit resolution step (ResolveInpaint,
// ResolveOutpaint) that applies documented defaults to the request
// parameters. The defaults themselves can be overridden from a YAML file:
//
//	inpainting:
//	  guidance_scale: 9
//	  mask_feather: 12
//	outpainting:
//	  pixels: 128
package processing
