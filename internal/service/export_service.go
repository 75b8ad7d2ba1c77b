package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"persona-llm/internal/domain"
)

// PersonaCipher cifra y descifra el perfil serializado con una contraseña.
type PersonaCipher interface {
	Encrypt(plaintext, password string) (domain.EncryptedPersonaData, error)
	Decrypt(env domain.EncryptedPersonaData, password string) (string, error)
}

// PasswordPrompt pide la contraseña solo cuando el archivo viene cifrado.
type PasswordPrompt func(ctx context.Context) (string, error)

// StaticPassword devuelve un PasswordPrompt con un valor ya conocido (por ejemplo un header HTTP).
func StaticPassword(password string) PasswordPrompt {
	return func(context.Context) (string, error) { return password, nil }
}

// ExportService produce y consume archivos de persona, en claro o cifrados.
type ExportService struct {
	cipher PersonaCipher
	logger *zap.Logger
}

func NewExportService(cipher PersonaCipher, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{cipher: cipher, logger: logger}
}

// Export serializa el perfil. Con contraseña no vacía devuelve el sobre {data, iv, salt, isEncrypted}.
func (s *ExportService) Export(profile domain.PersonaProfile, password string) ([]byte, error) {
	plain, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if password == "" {
		return plain, nil
	}

	env, err := s.cipher.Encrypt(string(plain), password)
	if err != nil {
		return nil, fmt.Errorf("encrypt profile: %w", err)
	}
	env.IsEncrypted = true
	out, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return out, nil
}

// Import acepta el sobre cifrado o un perfil en claro (formato anterior). La contraseña se pide solo si hace falta.
func (s *ExportService) Import(ctx context.Context, fileText []byte, prompt PasswordPrompt) (domain.PersonaProfile, error) {
	var probe struct {
		IsEncrypted bool `json:"isEncrypted"`
	}
	if err := json.Unmarshal(fileText, &probe); err != nil {
		return domain.PersonaProfile{}, fmt.Errorf("%w: %v", domain.ErrInvalidPersonaFormat, err)
	}

	payload := fileText
	if probe.IsEncrypted {
		plain, err := s.decryptEnvelope(ctx, fileText, prompt)
		if err != nil {
			return domain.PersonaProfile{}, err
		}
		payload = []byte(plain)
	}

	var profile domain.PersonaProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		if probe.IsEncrypted {
			return domain.PersonaProfile{}, domain.ErrInvalidCredentialsOrCorruptData
		}
		return domain.PersonaProfile{}, fmt.Errorf("%w: %v", domain.ErrInvalidPersonaFormat, err)
	}
	if err := profile.Validate(); err != nil {
		return domain.PersonaProfile{}, err
	}
	return profile, nil
}

func (s *ExportService) decryptEnvelope(ctx context.Context, fileText []byte, prompt PasswordPrompt) (string, error) {
	var env domain.EncryptedPersonaData
	if err := json.Unmarshal(fileText, &env); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidPersonaFormat, err)
	}
	if prompt == nil {
		return "", domain.ErrPasswordRequired
	}
	password, err := prompt(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPasswordRequired, err)
	}
	if password == "" {
		return "", domain.ErrPasswordRequired
	}

	plain, err := s.cipher.Decrypt(env, password)
	if err != nil {
		s.logger.Info("persona import rejected", zap.Error(err))
		return "", err
	}
	return plain, nil
}

var filenameSpaces = regexp.MustCompile(`\s+`)

// ExportFilename arma el nombre de descarga: minúsculas, espacios a "_", sufijo "_secure" si va cifrado.
func ExportFilename(profile domain.PersonaProfile, encrypted bool) string {
	base := strings.ToLower(filenameSpaces.ReplaceAllString(strings.TrimSpace(profile.Name), "_"))
	if base == "" {
		base = "persona"
	}
	if encrypted {
		base += "_secure"
	}
	return base + ".json"
}
