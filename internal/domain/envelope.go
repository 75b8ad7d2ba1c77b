package domain

// EncryptedPersonaData es el registro cifrado del archivo exportado.
// Data, IV y Salt van en base64 estándar; IV y Salt son nuevos en cada cifrado.
type EncryptedPersonaData struct {
	Data        string `json:"data"`
	IV          string `json:"iv"`
	Salt        string `json:"salt"`
	IsEncrypted bool   `json:"isEncrypted"`
}
