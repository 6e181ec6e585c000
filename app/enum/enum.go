package enum

//go:generate go run github.com/go-pkgz/enum@latest -type mode -lower
type mode int

const (
	modeDisabled mode = iota
	modeEnabled
)
