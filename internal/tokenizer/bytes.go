package tokenizer

import "fmt"

// Bytes is a byte-level codec: every byte of the UTF-8 input is one token.
type Bytes struct{}

func (Bytes) IDsFromText(text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (Bytes) TextFromIDs(ids []int) (string, error) {
	b := make([]byte, len(ids))
	for i, id := range ids {
		if id < 0 || id > 255 {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		b[i] = byte(id)
	}
	return string(b), nil
}

func (Bytes) VocabSize() int { return 256 }
