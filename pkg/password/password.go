// Package password generates temporary credentials for pre-registered members.
package password

import (
	"crypto/rand"
	"math/big"
)

const (
	upper    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower    = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
	alphabet = upper + lower + digits
)

// Generate returns a random password of the given length containing at least
// one uppercase letter, one lowercase letter and one digit. The guaranteed
// characters are shuffled into random positions so they are not predictably
// placed. Length below 3 is raised to 3.
func Generate(length int) (string, error) {
	if length < 3 {
		length = 3
	}
	chars := make([]byte, 0, length)

	c, err := pick(upper)
	if err != nil {
		return "", err
	}
	chars = append(chars, c)
	c, err = pick(lower)
	if err != nil {
		return "", err
	}
	chars = append(chars, c)
	c, err = pick(digits)
	if err != nil {
		return "", err
	}
	chars = append(chars, c)

	for len(chars) < length {
		c, err = pick(alphabet)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates with crypto/rand indices.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
