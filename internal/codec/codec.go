// Package codec cifra y descifra payloads con una clave derivada de un password.
//
// Los parámetros (PBKDF2-HMAC-SHA256 con 100.000 iteraciones, AES-256-GCM, salt de 16 bytes
// y nonce de 12 bytes) son constantes: cualquier instancia con el password correcto puede
// descifrar cualquier archivo que otra instancia haya producido.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"persona-llm/internal/domain"
)

const (
	Iterations = 100_000
	KeySize    = 32
	SaltSize   = 16
	NonceSize  = 12
)

// PasswordCodec no guarda estado entre llamadas; es seguro usarlo en paralelo.
type PasswordCodec struct {
	random io.Reader
}

func NewPasswordCodec() *PasswordCodec {
	return &PasswordCodec{random: rand.Reader}
}

// Encrypt genera salt y nonce nuevos, deriva la clave y sella el plaintext.
func (c *PasswordCodec) Encrypt(plaintext, password string) (domain.EncryptedPersonaData, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(c.reader(), salt); err != nil {
		return domain.EncryptedPersonaData{}, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.reader(), nonce); err != nil {
		return domain.EncryptedPersonaData{}, fmt.Errorf("generate nonce: %w", err)
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return domain.EncryptedPersonaData{}, err
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	return domain.EncryptedPersonaData{
		Data:        base64.StdEncoding.EncodeToString(sealed),
		IV:          base64.StdEncoding.EncodeToString(nonce),
		Salt:        base64.StdEncoding.EncodeToString(salt),
		IsEncrypted: true,
	}, nil
}

// Decrypt devuelve el plaintext completo o ErrInvalidCredentialsOrCorruptData.
// No distingue password incorrecto de archivo corrupto.
func (c *PasswordCodec) Decrypt(env domain.EncryptedPersonaData, password string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil || len(salt) == 0 {
		return "", domain.ErrInvalidCredentialsOrCorruptData
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil || len(nonce) != NonceSize {
		return "", domain.ErrInvalidCredentialsOrCorruptData
	}
	sealed, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return "", domain.ErrInvalidCredentialsOrCorruptData
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return "", domain.ErrInvalidCredentialsOrCorruptData
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", domain.ErrInvalidCredentialsOrCorruptData
	}
	return string(plain), nil
}

func (c *PasswordCodec) reader() io.Reader {
	if c == nil || c.random == nil {
		return rand.Reader
	}
	return c.random
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return aead, nil
}
