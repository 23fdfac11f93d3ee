package commands

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
	secureService "github.com/kabourne/wordmatch/internal/secure/service"
)

func TestRunGenerateKeypair(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RunGenerateKeypair(&buf))

	output := buf.String()
	assert.Contains(t, output, "RSA_PRIVATE_KEY_PEM=")
	assert.Contains(t, output, "RSA_PUBLIC_KEY_PEM=")

	// The printed public key must round-trip through the quoted env format
	// back into a usable RSA key.
	var publicPEM string
	for _, line := range strings.Split(output, "\n") {
		if quoted, ok := strings.CutPrefix(line, "RSA_PUBLIC_KEY_PEM="); ok {
			var err error
			publicPEM, err = strconv.Unquote(quoted)
			require.NoError(t, err)
		}
	}
	require.NotEmpty(t, publicPEM)

	publicKey, err := secureService.ParsePublicKeyPEM(publicPEM)
	require.NoError(t, err)
	assert.Equal(t, secureDomain.RSAKeyBits, publicKey.N.BitLen())
}
