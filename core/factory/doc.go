// Package factory provides a small generic registry that maps a format or
// type name to a constructor. Constructors receive a typed configuration
// value and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[string, io.Reader]()
//	reg.Register("file", func(path string) (io.Reader, error) {
//	    return os.Open(path)
//	})
//	r, err := reg.Create("file", "foo.txt")
package factory
