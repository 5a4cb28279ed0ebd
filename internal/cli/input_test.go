package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("a@b.c\n"))

	text, err := GetSimpleText(reader, "Enter email", &out)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", text)
	assert.Contains(t, out.String(), "Enter email")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("a@b.c")) // no trailing newline

	text, err := GetSimpleText(reader, "Enter email", &out)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", text)
}

func TestGetSimpleText_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(reader, "Enter email", &out)
	assert.ErrorIs(t, err, io.EOF)
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) { return []byte("secret1"), nil }

	var out bytes.Buffer
	pw, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret1", pw)
	assert.Contains(t, out.String(), "Enter password")
}

func TestGetPassword_TerminalError(t *testing.T) {
	orig := readPassword
	defer func() { readPassword = orig }()
	readPassword = func(fd int) ([]byte, error) { return nil, errors.New("not a terminal") }

	var out bytes.Buffer
	_, err := GetPassword(&out)
	assert.Error(t, err)
}
