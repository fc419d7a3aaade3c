package protocol

// DecodeOutput decodes the octal-escaped payload of an %output line.
//
// A backslash followed by exactly three octal digits yields one byte. A
// backslash not followed by three valid digits decodes to '?', consuming
// only the malformed prefix. Carriage returns that appear inside an escape
// are an artifact of the transport's line discipline and are skipped
// without breaking the three-digit count. Bare control bytes below 0x20,
// other than tab, are dropped.
func DecodeOutput(payload string) []byte {
	out := make([]byte, 0, len(payload))
	for i := 0; i < len(payload); {
		c := payload[i]
		if c == '\\' {
			value := 0
			digits := 0
			j := i + 1
			for j < len(payload) && digits < 3 {
				d := payload[j]
				if d == '\r' {
					j++
					continue
				}
				if d < '0' || d > '7' {
					break
				}
				value = value<<3 | int(d-'0')
				digits++
				j++
			}
			if digits == 3 {
				out = append(out, byte(value))
			} else {
				out = append(out, '?')
			}
			i = j
			continue
		}
		if c < 0x20 && c != '\t' {
			i++
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}
