package scan

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blakesmith/ar"
)

// ArchiveMagic starts every static archive.
const ArchiveMagic = "!<arch>\n"

// IsArchive reports whether data starts with the archive magic.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ArchiveMagic))
}

// Member is one file extracted from a static archive.
type Member struct {
	Name string
	Data []byte
}

// readArchive returns the file members of a GNU or BSD archive in archive
// order. Symbol tables and the GNU long name table are not returned.
func readArchive(data []byte) ([]Member, error) {
	if !IsArchive(data) {
		return nil, fmt.Errorf("missing archive magic")
	}

	rd := ar.NewReader(bytes.NewReader(data))

	var (
		members   []Member
		longNames []byte
	)
	for {
		hdr, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("member header %d: %w", len(members), err)
		}
		if hdr.Size < 0 {
			return nil, fmt.Errorf("member %q: negative size", hdr.Name)
		}

		body, err := io.ReadAll(rd)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", hdr.Name, err)
		}
		if int64(len(body)) != hdr.Size {
			return nil, fmt.Errorf("member %q: truncated, %d of %d bytes", hdr.Name, len(body), hdr.Size)
		}

		name := strings.TrimRight(hdr.Name, " ")
		switch {
		case name == "/" || name == "/SYM64/" || strings.HasPrefix(name, "__.SYMDEF"):
			continue
		case name == "//":
			longNames = body
			continue
		case strings.HasPrefix(name, "#1/"):
			// BSD: the name is stored in front of the data.
			n, err := strconv.Atoi(name[3:])
			if err != nil || n < 0 || n > len(body) {
				return nil, fmt.Errorf("member %q: invalid BSD name length", name)
			}
			name = strings.TrimRight(string(body[:n]), "\x00")
			body = body[n:]
		case len(name) > 1 && name[0] == '/':
			offset, err := strconv.Atoi(name[1:])
			if err != nil || offset < 0 || offset >= len(longNames) {
				return nil, fmt.Errorf("member %q: invalid long name reference", name)
			}
			name = longName(longNames[offset:])
		default:
			name = strings.TrimSuffix(name, "/")
		}

		members = append(members, Member{Name: name, Data: body})
	}
	return members, nil
}

// longName reads one entry of the GNU long name table, terminated by "/\n".
func longName(table []byte) string {
	if end := bytes.IndexByte(table, '\n'); end >= 0 {
		table = table[:end]
	}
	return strings.TrimSuffix(string(table), "/")
}
