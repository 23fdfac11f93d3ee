package commands

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	secureDomain "github.com/kabourne/wordmatch/internal/secure/domain"
	secureService "github.com/kabourne/wordmatch/internal/secure/service"
)

// RunGenerateKeypair generates a fresh RSA-2048 keypair for the secure
// exchange and prints both halves in the environment variable format the
// server loads at startup.
//
// Without a configured keypair the server generates an ephemeral one on each
// start, which invalidates keys cached by running clients across restarts.
// Persisting a generated keypair keeps the published public key stable.
func RunGenerateKeypair(w io.Writer) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, secureDomain.RSAKeyBits)
	if err != nil {
		return fmt.Errorf("failed to generate RSA keypair: %w", err)
	}

	privatePEM, err := secureService.MarshalPrivateKeyPEM(privateKey)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	publicPEM, err := secureService.MarshalPublicKeyPEM(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to encode public key: %w", err)
	}

	fmt.Fprintln(w, "# Add to your environment or .env file:")
	fmt.Fprintf(w, "RSA_PRIVATE_KEY_PEM=%q\n", privatePEM)
	fmt.Fprintf(w, "RSA_PUBLIC_KEY_PEM=%q\n", publicPEM)

	return nil
}
