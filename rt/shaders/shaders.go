// Package shaders embeds the WGSL sources of the gpu host.
package shaders

import (
	_ "embed"
)

// ForwardWGSL shades the SRPDefaultUnlit pass: object color lit by up to
// four packed lights. Entry points vs_main and fs_main.
//
//go:embed forward.wgsl
var ForwardWGSL string

// ErrorWGSL draws the diagnostic fallback in flat _Color.
//
//go:embed error.wgsl
var ErrorWGSL string

// SkyboxWGSL draws the sky gradient behind opaque geometry.
//
//go:embed skybox.wgsl
var SkyboxWGSL string
