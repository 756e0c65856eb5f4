package util

import (
	"bytes"
	"encoding/gob"
	"os"

	"golang.org/x/exp/constraints"
)

func Min[A constraints.Ordered](a A, b A) A {
	if a > b {
		return b
	}
	return a
}

func Max[A constraints.Ordered](a A, b A) A {
	if a < b {
		return b
	}
	return a
}

func Abs[A constraints.Signed | constraints.Float](v A) A {
	if v < 0 {
		return -v
	}
	return v
}

// WriteBinary gob-encodes data and writes it to filename.
func WriteBinary(filename string, data any) error {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(data); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0666)
}

// ReadBinary reads a gob-encoded value of type A from path.
func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return data, err
	}
	return data, nil
}
