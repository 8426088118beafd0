package qrcode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinova/mfacore/pkg/qrcode"
)

const sampleURI = "otpauth://totp/Clinova:alice@example.com?secret=ABCDEFGHIJKLMNOP&issuer=Clinova"

func TestGenerate(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate(sampleURI, 256)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestGenerate_EmptyContent(t *testing.T) {
	t.Parallel()

	_, err := qrcode.Generate("   ", 256)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}

func TestGenerate_DefaultSize(t *testing.T) {
	t.Parallel()

	png, err := qrcode.Generate(sampleURI, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.DataURI(sampleURI, 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
