//go:build production

package forward

const DiagnosticsBuild = false
