//go:build !race

package instrument

const raceBuild = false
