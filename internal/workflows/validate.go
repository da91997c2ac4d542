package workflows

import (
	"fmt"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"

	"github.com/joho/godotenv"
)

// validateDotenv checks that data parses as a dotenv file and returns the
// number of variables it defines.
func validateDotenv(name string, data []byte) (int, error) {
	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a valid dotenv file: %v", kerrors.ErrEncoding, name, err)
	}
	return len(vars), nil
}
