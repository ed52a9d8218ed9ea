//go:build !production

package forward

// DiagnosticsBuild is true unless the binary is built with -tags production.
// It gates scene-view editor geometry and is the upper bound for
// DiagnosticsMode.
const DiagnosticsBuild = true
