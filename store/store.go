// Package store persists identity key material, certificates, chains, and
// the revocation set to a data directory, using the same staged
// write-then-rename approach for every file so a crash mid-write never
// leaves a corrupt file in place of a good one.
package store

import (
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"crypto/ed25519"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/keys"
	"github.com/aurel3d/aletheia/verifier"
)

const (
	keyPEMType       = "ALETHEIA PRIVATE KEY"
	certPEMType      = "ALETHEIA CERTIFICATE"
	chainPEMType     = "ALETHEIA CHAIN"
	keyFileName      = "identity.key"
	certFileName     = "identity.cert"
	chainFileName    = "chain.alc"
	indexFileName    = "index.json"
	revokedFileName  = "revoked.json"
	defaultFilePerm  = 0644
	privateFilePerm  = 0600
	directoryDirPerm = 0755
)

// IndexEntry records one certificate this directory has issued, for the
// "list" command. It mirrors only what that command needs to display —
// the certificate itself remains the source of truth.
type IndexEntry struct {
	Serial      string    `json:"serial"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	IssuerID    string    `json:"issuer_id"`
	IsCA        bool      `json:"is_ca"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Init creates the data directory structure: the directory itself and an
// empty index file, if one does not already exist.
func Init(dataDir string) error {
	if err := os.MkdirAll(dataDir, directoryDirPerm); err != nil {
		return fmt.Errorf("store: create data directory: %w", err)
	}
	indexPath := filepath.Join(dataDir, indexFileName)
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := SaveIndex(dataDir, nil); err != nil {
			return err
		}
	}
	return nil
}

// IsInitialized reports whether an identity key and certificate already
// exist in dataDir.
func IsInitialized(dataDir string) bool {
	_, keyErr := os.Stat(filepath.Join(dataDir, keyFileName))
	_, certErr := os.Stat(filepath.Join(dataDir, certFileName))
	return keyErr == nil && certErr == nil
}

// SaveKey PEM-encodes priv's 32-byte seed and writes it with owner-only
// permissions. The seed, not the expanded key, is what's persisted —
// ed25519.NewKeyFromSeed reconstructs the full key on load.
func SaveKey(dataDir string, priv keys.PrivateKey) error {
	seed := ed25519.PrivateKey(priv).Seed()
	block := pem.EncodeToMemory(&pem.Block{Type: keyPEMType, Bytes: seed})
	return writeFileAtomic(filepath.Join(dataDir, keyFileName), block, privateFilePerm)
}

// LoadKey reads and reconstructs the identity private key.
func LoadKey(dataDir string) (keys.PrivateKey, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, keyFileName))
	if err != nil {
		return nil, fmt.Errorf("store: read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != keyPEMType {
		return nil, fmt.Errorf("store: malformed private key file")
	}
	if len(block.Bytes) != keys.SeedSize {
		return nil, fmt.Errorf("store: private key seed has wrong length: got %d, want %d", len(block.Bytes), keys.SeedSize)
	}
	return ed25519.NewKeyFromSeed(block.Bytes), nil
}

// SaveCertificate PEM-encodes and writes a single certificate.
func SaveCertificate(dataDir string, c *cert.Certificate) error {
	block := pem.EncodeToMemory(&pem.Block{Type: certPEMType, Bytes: c.Encode(true)})
	return writeFileAtomic(filepath.Join(dataDir, certFileName), block, defaultFilePerm)
}

// LoadCertificate reads the identity certificate.
func LoadCertificate(dataDir string) (*cert.Certificate, error) {
	return LoadCertificateFile(filepath.Join(dataDir, certFileName))
}

// LoadCertificateFile reads a single PEM-encoded certificate from an
// arbitrary path, such as a trusted root exported for another party.
func LoadCertificateFile(path string) (*cert.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read certificate: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != certPEMType {
		return nil, fmt.Errorf("store: malformed certificate file")
	}
	return cert.DecodeCertificate(block.Bytes)
}

// SaveChain PEM-encodes and writes the full signing chain, creator first.
func SaveChain(dataDir string, chain cert.Chain) error {
	block := pem.EncodeToMemory(&pem.Block{Type: chainPEMType, Bytes: cert.EncodeChain(chain)})
	return writeFileAtomic(filepath.Join(dataDir, chainFileName), block, defaultFilePerm)
}

// LoadChain reads the signing chain.
func LoadChain(dataDir string) (cert.Chain, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, chainFileName))
	if err != nil {
		return nil, fmt.Errorf("store: read chain: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != chainPEMType {
		return nil, fmt.Errorf("store: malformed chain file")
	}
	return cert.DecodeChain(block.Bytes)
}

// LoadIndex reads the issued-certificate index.
func LoadIndex(dataDir string) ([]IndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("store: read index: %w", err)
	}
	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("store: parse index: %w", err)
	}
	return entries, nil
}

// SaveIndex overwrites the issued-certificate index.
func SaveIndex(dataDir string, entries []IndexEntry) error {
	if entries == nil {
		entries = []IndexEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal index: %w", err)
	}
	data = append(data, '\n')
	return writeFileAtomic(filepath.Join(dataDir, indexFileName), data, defaultFilePerm)
}

// AppendIndexEntry records a newly issued certificate.
func AppendIndexEntry(dataDir string, e IndexEntry) error {
	entries, err := LoadIndex(dataDir)
	if err != nil {
		return err
	}
	entries = append(entries, e)
	return SaveIndex(dataDir, entries)
}

// revokedFile is the on-disk shape of revoked.json: serial (lowercase
// hex) to a short human reason.
type revokedFile map[string]string

// LoadRevoked reads the revocation set, returning an empty, non-nil set
// if the file does not exist yet.
func LoadRevoked(dataDir string) (revokedFile, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, revokedFileName))
	if os.IsNotExist(err) {
		return revokedFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read revocation set: %w", err)
	}
	var m revokedFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("store: parse revocation set: %w", err)
	}
	return m, nil
}

// Revoke adds serial (hex) to the revocation set with the given reason.
func Revoke(dataDir, serialHex, reason string) error {
	m, err := LoadRevoked(dataDir)
	if err != nil {
		return err
	}
	m[serialHex] = reason
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal revocation set: %w", err)
	}
	data = append(data, '\n')
	return writeFileAtomic(filepath.Join(dataDir, revokedFileName), data, defaultFilePerm)
}

// ToRevokedSerials builds a verifier.RevokedSerials view of the
// revocation set, dropping the reason text the verifier has no use for.
func (m revokedFile) ToRevokedSerials() verifier.RevokedSerials {
	out := make(verifier.RevokedSerials, len(m))
	for serial := range m {
		out[serial] = struct{}{}
	}
	return out
}

// SortedSerials returns the revoked serials in sorted order, for stable
// command output.
func (m revokedFile) SortedSerials() []string {
	out := make([]string, 0, len(m))
	for serial := range m {
		out = append(out, serial)
	}
	sort.Strings(out)
	return out
}

// writeFileAtomic writes data to path.tmp then renames it over path, so
// a crash mid-write can never leave a half-written file at path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: rename into place %s: %w", path, err)
	}
	return nil
}
