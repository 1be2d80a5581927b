package store

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/edusdk/sessionkit"
)

// Binary record layout: one version byte, then uint16 big-endian
// length-prefixed string fields in declaration order.
const (
	pairRecordVersionV1 = 1
	userRecordVersionV1 = 1
)

func encodePairRecord(pair sessionkit.TokenPair) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(pairRecordVersionV1)
	if err := writeRecordString(&buf, pair.Access); err != nil {
		return nil, err
	}
	if err := writeRecordString(&buf, pair.Refresh); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decodePairRecord(data []byte) (*sessionkit.TokenPair, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != pairRecordVersionV1 {
		return nil, errors.New("invalid pair record version")
	}

	access, err := readRecordString(reader)
	if err != nil {
		return nil, err
	}
	refresh, err := readRecordString(reader)
	if err != nil {
		return nil, err
	}

	return &sessionkit.TokenPair{Access: access, Refresh: refresh}, nil
}

func encodeUserRecord(user sessionkit.User) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(userRecordVersionV1)
	for _, field := range []string{user.ID, user.Email, user.FullName, string(user.Role), user.SchoolID} {
		if err := writeRecordString(&buf, field); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func decodeUserRecord(data []byte) (*sessionkit.User, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != userRecordVersionV1 {
		return nil, errors.New("invalid user record version")
	}

	fields := make([]string, 5)
	for i := range fields {
		field, err := readRecordString(reader)
		if err != nil {
			return nil, err
		}
		fields[i] = field
	}

	return &sessionkit.User{
		ID:       fields[0],
		Email:    fields[1],
		FullName: fields[2],
		Role:     sessionkit.Role(fields[3]),
		SchoolID: fields[4],
	}, nil
}

func writeRecordString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("record field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readRecordString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}

	field := make([]byte, length)
	if _, err := io.ReadFull(reader, field); err != nil {
		return "", err
	}
	return string(field), nil
}
