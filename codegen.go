package register

import (
	"crypto/rand"
	"math/big"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const codeAlphabet = "0123456789"

// ActivationCodeLength is the number of digits in an activation code
const ActivationCodeLength = 6

// GenerateActivationCode returns a string of length digits, each drawn
// independently and uniformly from a cryptographically secure source.
func GenerateActivationCode(length int) (string, error) {
	if length <= 0 {
		return "", goerrors.New("activation code length must be positive", goerrors.CategoryBadInput)
	}

	max := big.NewInt(int64(len(codeAlphabet)))

	var code strings.Builder
	code.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random source")
		}
		code.WriteByte(codeAlphabet[n.Int64()])
	}

	return code.String(), nil
}

// CodeGenerator produces activation codes of a given length
type CodeGenerator func(length int) (string, error)
