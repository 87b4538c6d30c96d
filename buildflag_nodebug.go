//go:build !debug

package instrument

const debugBuild = false
