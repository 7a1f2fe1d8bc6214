package vjson

import "os"

// LoadFile reads a JSON document from disk. Files larger than the
// parser's addressable range are rejected up front. The parser makes
// its own padded copy of the returned bytes, so no padding contract is
// imposed on the caller.
func LoadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxCapacity {
		return nil, Capacity
	}
	return data, nil
}
