package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"testing"
)

// AssertMagic проверяет, что артефакт начинается с ожидаемой сигнатуры.
func AssertMagic(t testing.TB, expected string, data []byte) {
	t.Helper()

	if len(data) < len(expected) {
		t.Fatalf("artifact too short for magic %q: got %d bytes", expected, len(data))
	}

	actual := string(data[:len(expected)])
	if actual != expected {
		t.Fatalf("magic mismatch: expected %q, got %q", expected, actual)
	}
}

// AssertU16LE проверяет uint16 (little-endian) по смещению.
func AssertU16LE(t testing.TB, expected uint16, data []byte, offset int) {
	t.Helper()

	if len(data) < offset+2 {
		t.Fatalf("data too short: need %d bytes for uint16 at offset %d, got %d",
			offset+2, offset, len(data))
	}

	actual := binary.LittleEndian.Uint16(data[offset:])
	if actual != expected {
		t.Fatalf("uint16 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertU32LE проверяет uint32 (little-endian) по смещению.
func AssertU32LE(t testing.TB, expected uint32, data []byte, offset int) {
	t.Helper()

	if len(data) < offset+4 {
		t.Fatalf("data too short: need %d bytes for uint32 at offset %d, got %d",
			offset+4, offset, len(data))
	}

	actual := binary.LittleEndian.Uint32(data[offset:])
	if actual != expected {
		t.Fatalf("uint32 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertF32LE проверяет float32 (IEEE 754, little-endian) по смещению.
// Сравнение побитовое, поэтому -0 и 0 различаются.
func AssertF32LE(t testing.TB, expected float32, data []byte, offset int) {
	t.Helper()

	if len(data) < offset+4 {
		t.Fatalf("data too short: need %d bytes for float32 at offset %d, got %d",
			offset+4, offset, len(data))
	}

	bits := binary.LittleEndian.Uint32(data[offset:])
	if bits != math.Float32bits(expected) {
		t.Fatalf("float32 mismatch at offset %d: expected %v, got %v",
			offset, expected, math.Float32frombits(bits))
	}
}

// AssertByteAtOffset проверяет, что байт по смещению соответствует ожидаемому.
func AssertByteAtOffset(t testing.TB, expected byte, data []byte, offset int) {
	t.Helper()

	if len(data) <= offset {
		t.Fatalf("data too short: need %d bytes, got %d", offset+1, len(data))
	}

	actual := data[offset]
	if actual != expected {
		t.Fatalf("byte mismatch at offset %d: expected 0x%02X, got 0x%02X", offset, expected, actual)
	}
}

// AssertCString проверяет нуль-терминированную UTF-8 строку по смещению
// и возвращает смещение первого байта после терминатора.
func AssertCString(t testing.TB, expected string, data []byte, offset int) int {
	t.Helper()

	if offset > len(data) {
		t.Fatalf("string offset %d beyond data length %d", offset, len(data))
	}
	end := bytes.IndexByte(data[offset:], 0)
	if end == -1 {
		t.Fatalf("string at offset %d has no null terminator", offset)
	}

	actual := string(data[offset : offset+end])
	if actual != expected {
		t.Fatalf("string mismatch at offset %d: expected %q, got %q", offset, expected, actual)
	}
	return offset + end + 1
}

// AssertBytesEqual проверяет, что два байтовых слайса равны.
func AssertBytesEqual(t testing.TB, expected, actual []byte, msg string) {
	t.Helper()

	if !bytes.Equal(expected, actual) {
		t.Fatalf("%s: bytes mismatch\nexpected:\n%s\nactual:\n%s", msg, Dump(expected), Dump(actual))
	}
}

// AssertLength проверяет длину артефакта.
func AssertLength(t testing.TB, expected int, data []byte) {
	t.Helper()

	actual := len(data)
	if actual != expected {
		t.Fatalf("length mismatch: expected %d bytes, got %d bytes", expected, actual)
	}
}

// Dump возвращает hex dump для отладки.
func Dump(data []byte) string {
	var buf bytes.Buffer
	for i := 0; i < len(data); i += 16 {
		end := min(i+16, len(data))
		chunk := data[i:end]

		// Offset
		fmt.Fprintf(&buf, "%04x  ", i)

		// Hex
		for j, b := range chunk {
			if j == 8 {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "%02x ", b)
		}

		// Padding
		for j := len(chunk); j < 16; j++ {
			if j == 8 {
				buf.WriteString(" ")
			}
			buf.WriteString("   ")
		}

		// ASCII
		buf.WriteString(" |")
		for _, b := range chunk {
			if b >= 32 && b <= 126 {
				buf.WriteByte(b)
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteString("|\n")
	}
	return buf.String()
}
