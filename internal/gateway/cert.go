package gateway

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// loadCertificate reads the merchant identity the bank issued. TBC hands out
// PKCS#12 bundles; converted PEM files, including ones with a legacy
// passphrase-encrypted key, are accepted too.
func loadCertificate(path, passphrase string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("read certificate file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".p12", ".pfx":
		return loadPKCS12(data, passphrase)
	default:
		return loadPEM(data, passphrase)
	}
}

func loadPKCS12(data []byte, passphrase string) (tls.Certificate, error) {
	blocks, err := pkcs12.ToPEM(data, passphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode pkcs12 bundle: %w", err)
	}

	var certPEM, keyPEM []byte
	for _, block := range blocks {
		encoded := pem.EncodeToMemory(block)
		if strings.Contains(block.Type, "PRIVATE KEY") {
			keyPEM = append(keyPEM, encoded...)
		} else {
			certPEM = append(certPEM, encoded...)
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("assemble key pair from pkcs12: %w", err)
	}
	return cert, nil
}

func loadPEM(data []byte, passphrase string) (tls.Certificate, error) {
	var certPEM, keyPEM []byte

	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		if strings.Contains(block.Type, "PRIVATE KEY") {
			if x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // legacy format still issued for converted bank certs
				der, err := x509.DecryptPEMBlock(block, []byte(passphrase)) //nolint:staticcheck
				if err != nil {
					return tls.Certificate{}, fmt.Errorf("decrypt private key: %w", err)
				}
				block = &pem.Block{Type: block.Type, Bytes: der}
			}
			keyPEM = append(keyPEM, pem.EncodeToMemory(block)...)
			continue
		}

		certPEM = append(certPEM, pem.EncodeToMemory(block)...)
	}

	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return tls.Certificate{}, errors.New("certificate file missing certificate or private key block")
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("assemble key pair: %w", err)
	}
	return cert, nil
}
