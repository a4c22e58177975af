package crypto

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KeyAPI is the subset of the KMS client used here.
type KeyAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

var encryptionContext = map[string]string{
	"Purpose": "journal-body",
	"Service": "wisdom-coach",
}

// KMSCipher encrypts and decrypts journal bodies with a KMS key.
// Ciphertexts are base64 encoded.
type KMSCipher struct {
	client KeyAPI
	keyID  string
}

// NewKMSCipher builds a cipher from the default AWS config chain.
func NewKMSCipher(ctx context.Context, keyID string) (*KMSCipher, error) {
	if keyID == "" {
		return nil, fmt.Errorf("kms key id is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewKMSCipherWithClient(kms.NewFromConfig(cfg), keyID), nil
}

func NewKMSCipherWithClient(client KeyAPI, keyID string) *KMSCipher {
	return &KMSCipher{client: client, keyID: keyID}
}

func (k *KMSCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	out, err := k.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(k.keyID),
		Plaintext:         []byte(plaintext),
		EncryptionContext: encryptionContext,
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (k *KMSCipher) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	out, err := k.client.Decrypt(ctx, &kms.DecryptInput{
		CiphertextBlob:    blob,
		EncryptionContext: encryptionContext,
	})
	if err != nil {
		return "", fmt.Errorf("kms decrypt: %w", err)
	}
	return string(out.Plaintext), nil
}
