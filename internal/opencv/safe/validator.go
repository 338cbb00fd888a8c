package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateMatType checks that mat is valid and of the expected type.
func ValidateMatType(mat *Mat, want gocv.MatType, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if got := mat.Type(); got != want {
		return fmt.Errorf("unsupported MatType %d for operation: %s (want %d)", int(got), operation, int(want))
	}

	return nil
}

func ValidateChannels(mat *Mat, operation string, allowed ...int) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	channels := mat.Channels()
	for _, c := range allowed {
		if channels == c {
			return nil
		}
	}

	return fmt.Errorf("unsupported channel count %d for operation: %s", channels, operation)
}
