package util

// Check panics on a non-nil error
func Check(err error) {
	if err != nil {
		panic(err)
	}
}
