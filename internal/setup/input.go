package setup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/petnest/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordShort    = fmt.Errorf("password must be at least %d characters", common.MinPasswordLength)
)

// getPassword prints prompt to w and reads a line from the terminal without echo.
func getPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// promptNewPassword asks for a password twice and checks the minimum length.
func promptNewPassword(w io.Writer) (string, error) {
	first, err := getPassword(w, "Admin password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(first)

	second, err := getPassword(w, "Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	if len(first) < common.MinPasswordLength {
		return "", errPasswordShort
	}
	return string(first), nil
}
