package rest

import "fmt"

func errMissingParam(name string) error {
	return fmt.Errorf("missing required parameter: %s", name)
}

func errFeatureDisabled(name string) error {
	return fmt.Errorf("%s is not configured", name)
}
