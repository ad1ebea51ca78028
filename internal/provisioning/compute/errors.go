package compute

import "fmt"

// ProvisioningError reports that the provider rejected an instance request
// (insufficient quota, invalid image, ...). It is fatal.
type ProvisioningError struct {
	Count int
	Err   error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("failed to request %d instance(s): %v", e.Count, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// InstanceFaultError reports an instance the provider put in ERROR state.
// It is recovered by replacement and only surfaces when that fails.
type InstanceFaultError struct {
	ID     string
	Status string
}

func (e *InstanceFaultError) Error() string {
	return fmt.Sprintf("instance %s entered %s state", e.ID, e.Status)
}
