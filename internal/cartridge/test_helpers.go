package cartridge

import "bytes"

// LoadFromBytes is a test convenience wrapper around LoadFromReader.
func LoadFromBytes(data []byte) (*Cartridge, error) {
	return LoadFromReader(bytes.NewReader(data))
}
