package transport

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// Encrypter protects payloads on links that require confidentiality.
type Encrypter interface {
	// Encrypt returns an opaque token for plaintext.
	Encrypt(plaintext string) (string, error)

	// Decrypt returns the plaintext of a token, or ErrInvalidToken when the
	// token is malformed, tampered with or expired.
	Decrypt(token string) (string, error)
}

// Noop passes text through unchanged.
type Noop struct{}

func (Noop) Encrypt(plaintext string) (string, error) { return plaintext, nil }
func (Noop) Decrypt(token string) (string, error)     { return token, nil }

const (
	fernetVersion  = 0x80
	maxClockSkew   = 60 * time.Second
	fernetOverhead = 1 + 8 + aes.BlockSize + sha256.Size
)

// FernetConfig configures key derivation and token lifetime.
type FernetConfig struct {
	Password   string
	Salt       string
	Iterations int
	Hash       string        // "sha1", "sha256" or "sha512"
	Length     int           // Derived key bytes: 32, 48 or 64
	TTL        time.Duration // 0 = tokens never expire
}

// DefaultFernetConfig returns the parameters used by cooperating bots.
func DefaultFernetConfig() FernetConfig {
	return FernetConfig{
		Salt:       "nadybot",
		Iterations: 10000,
		Hash:       "sha256",
		Length:     32,
	}
}

// Fernet produces versioned, timestamped, HMAC-authenticated AES-CBC tokens.
//
// Token layout (base64url): version(1) | timestamp(8) | iv(16) | ciphertext | hmac-sha256(32).
// The first half of the derived key signs, the second half encrypts.
type Fernet struct {
	signKey []byte
	block   cipher.Block
	ttl     time.Duration
	now     func() time.Time
}

// NewFernet derives the key with PBKDF2 and returns the encrypter.
func NewFernet(cfg FernetConfig) (*Fernet, error) {
	if cfg.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidConfig)
	}
	if cfg.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be >= 1", ErrInvalidConfig)
	}
	var h func() hash.Hash
	switch strings.ToLower(cfg.Hash) {
	case "sha1":
		h = sha1.New
	case "sha256", "":
		h = sha256.New
	case "sha512":
		h = sha512.New
	default:
		return nil, fmt.Errorf("%w: unsupported hash %q", ErrInvalidConfig, cfg.Hash)
	}
	switch cfg.Length {
	case 32, 48, 64:
	default:
		return nil, fmt.Errorf("%w: key length must be 32, 48 or 64, got %d", ErrInvalidConfig, cfg.Length)
	}

	key := pbkdf2.Key([]byte(cfg.Password), []byte(cfg.Salt), cfg.Iterations, cfg.Length, h)
	half := cfg.Length / 2
	block, err := aes.NewCipher(key[half:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Fernet{
		signKey: key[:half],
		block:   block,
		ttl:     cfg.TTL,
		now:     time.Now,
	}, nil
}

// Encrypt implements Encrypter.
func (f *Fernet) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	msg := make([]byte, 1+8+aes.BlockSize+len(padded), 1+8+aes.BlockSize+len(padded)+sha256.Size)
	msg[0] = fernetVersion
	binary.BigEndian.PutUint64(msg[1:9], uint64(f.now().Unix()))
	copy(msg[9:], iv)
	cipher.NewCBCEncrypter(f.block, iv).CryptBlocks(msg[9+aes.BlockSize:], padded)

	mac := hmac.New(sha256.New, f.signKey)
	mac.Write(msg)
	msg = mac.Sum(msg)

	return base64.URLEncoding.EncodeToString(msg), nil
}

// Decrypt implements Encrypter. Nothing is decrypted before the HMAC verifies.
func (f *Fernet) Decrypt(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(raw) < fernetOverhead+aes.BlockSize || (len(raw)-fernetOverhead)%aes.BlockSize != 0 {
		return "", ErrInvalidToken
	}
	if raw[0] != fernetVersion {
		return "", ErrInvalidToken
	}

	body, sum := raw[:len(raw)-sha256.Size], raw[len(raw)-sha256.Size:]
	mac := hmac.New(sha256.New, f.signKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sum) {
		return "", ErrInvalidToken
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(body[1:9])), 0)
	now := f.now()
	if issued.After(now.Add(maxClockSkew)) {
		return "", ErrInvalidToken
	}
	if f.ttl > 0 && now.Sub(issued) > f.ttl {
		return "", ErrInvalidToken
	}

	iv := body[9 : 9+aes.BlockSize]
	ct := append([]byte(nil), body[9+aes.BlockSize:]...)
	cipher.NewCBCDecrypter(f.block, iv).CryptBlocks(ct, ct)
	plain, ok := pkcs7Unpad(ct, aes.BlockSize)
	if !ok {
		return "", ErrInvalidToken
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}

// EncryptionStage adapts an Encrypter to a pipeline stage.
type EncryptionStage struct {
	enc Encrypter
}

// NewEncryptionStage wraps enc; a nil enc behaves like Noop.
func NewEncryptionStage(enc Encrypter) *EncryptionStage {
	if enc == nil {
		enc = Noop{}
	}
	return &EncryptionStage{enc: enc}
}

// Name implements Stage.
func (s *EncryptionStage) Name() string {
	return "encryption"
}

// Outbound implements Stage.
func (s *EncryptionStage) Outbound(payload string) ([]string, error) {
	token, err := s.enc.Encrypt(payload)
	if err != nil {
		return nil, err
	}
	return []string{token}, nil
}

// Inbound implements Stage. Decryption failures look like unparsable input.
func (s *EncryptionStage) Inbound(frame string) (string, bool) {
	plain, err := s.enc.Decrypt(frame)
	if err != nil {
		return "", false
	}
	return plain, true
}
