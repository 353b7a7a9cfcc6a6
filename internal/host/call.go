package host

import "fmt"

// Call runs fn and converts a panic raised inside the backend into an error.
// Automation bridges surface some host failures as panics; callers that must
// never unwind use Call around every host interaction.
func Call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host call panicked: %v", r)
		}
	}()
	return fn()
}

// Get is Call for host reads that return a value.
func Get[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("host call panicked: %v", r)
		}
	}()
	return fn()
}
