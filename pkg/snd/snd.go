// Package snd decodes and encodes SND/AUD/AUE sound-asset headers
// across their three revisions: H1, XD, and XDA.
package snd

import (
	"strings"

	"github.com/bgrewell/dts-kit/pkg/bcd"
	"github.com/bgrewell/dts-kit/pkg/dtserr"
)

// HeaderLen is the base SND header size, excluding the optional
// encryption tail.
const HeaderLen = 92

// HeaderLenWithEncryption is the full on-disk size a decoder reads,
// whether or not the encryption tail is actually present.
const HeaderLenWithEncryption = HeaderLen + 3

// Revision identifies the SND header layout generation.
type Revision int

const (
	RevisionH1 Revision = iota
	RevisionXD
	RevisionXDA
)

func (r Revision) String() string {
	switch r {
	case RevisionH1:
		return "H1"
	case RevisionXD:
		return "XD"
	case RevisionXDA:
		return "XDA"
	default:
		return "unknown"
	}
}

// revisionFromHeader classifies the revision using only byte 60 and the
// XDA fixed-offset pattern at 18,31,47,50,51,55,59,65,66. No other byte
// may influence the classification.
func revisionFromHeader(b []byte) Revision {
	if b[60] != '*' {
		return RevisionH1
	}
	if b[18] == ' ' && b[31] == ' ' && b[47] == ' ' && b[50] == 'D' &&
		b[51] == ' ' && b[55] == ' ' && b[59] == ' ' && b[65] == 0 && b[66] == 0 {
		return RevisionXDA
	}
	return RevisionXD
}

// BackupFormat is the optical backup soundtrack format enum at byte 75.
type BackupFormat byte

const (
	DolbyA           BackupFormat = 0x00
	DolbySR          BackupFormat = 0x01
	Academy          BackupFormat = 0x02
	NonSync          BackupFormat = 0x80
	LastReelDolbySR  BackupFormat = 0x81
)

func (f BackupFormat) String() string {
	switch f {
	case DolbyA:
		return "Dolby A"
	case DolbySR:
		return "Dolby SR"
	case Academy:
		return "Academy"
	case NonSync:
		return "Non-Sync"
	case LastReelDolbySR:
		return "Last reel - Dolby SR"
	default:
		return "unknown"
	}
}

func parseBackupFormat(b byte) (BackupFormat, error) {
	switch BackupFormat(b) {
	case DolbyA, DolbySR, Academy, NonSync, LastReelDolbySR:
		return BackupFormat(b), nil
	default:
		return 0, dtserr.UnknownOpticalBackupFormat(b)
	}
}

// Offset is a BCD-encoded frames/seconds/minutes/hours timecode.
type Offset struct {
	Frames  int
	Seconds int
	Minutes int
	Hours   int
}

// Kind distinguishes a feature reel from a trailer-reel assembly.
type Kind int

const (
	KindFeature Kind = iota
	KindTrailer
)

// XDA carries the XDA-revision-specific descriptive fields.
type XDA struct {
	Source        *string
	Mix           *string
	LFELevel      *string
	SurroundDelay *string
	Filters       *string
}

// Metadata is the fully decoded SND header.
type Metadata struct {
	Revision      Revision
	Kind          Kind
	ID            uint16
	Reel          byte
	Title         string
	Studio        *string
	OpticalBackup BackupFormat
	Tracks        byte
	StartOffset   *Offset
	EndOffset     *Offset
	EncryptionKey *uint16
	Language      *string
	XDA           *XDA
}

// Decode decodes a HeaderLenWithEncryption-byte buffer into Metadata.
func Decode(b []byte) (*Metadata, error) {
	if len(b) < HeaderLenWithEncryption {
		return nil, dtserr.UnexpectedSize("", HeaderLenWithEncryption, len(b))
	}

	rev := revisionFromHeader(b)
	m := &Metadata{Revision: rev}

	var title string
	switch rev {
	case RevisionH1:
		title = string(b[0:67])
	case RevisionXD:
		title = string(b[0:60])
		m.Language = getLanguage(b[60:65])
	case RevisionXDA:
		title = string(b[0:18])
		m.Language = getLanguage(b[60:65])
		xda := &XDA{
			Source: getOptional(b[18:31]),
			Mix:    getOptional(b[31:47]),
		}
		if b[50] == 'D' {
			xda.LFELevel = getOptional(b[47:50])
		}
		xda.SurroundDelay = getOptional(b[51:55])
		xda.Filters = getOptional(b[55:59])
		m.XDA = xda
	}
	m.Title = strings.TrimSpace(strings.Trim(title, "\x00"))

	m.Studio = getStudio(b[68:72])

	backup, err := parseBackupFormat(b[75])
	if err != nil {
		return nil, err
	}
	m.OpticalBackup = backup

	m.ID = uint16(b[80]) | uint16(b[81])<<8
	m.Tracks = b[82]
	m.Reel = b[78]
	if m.Reel == 14 {
		m.Kind = KindTrailer
	} else {
		m.Kind = KindFeature
	}

	start, err := getOffset(b[84:88])
	if err != nil {
		return nil, err
	}
	m.StartOffset = start

	end, err := getOffset(b[88:92])
	if err != nil {
		return nil, err
	}
	m.EndOffset = end

	if b[92] == 1 {
		key := uint16(b[93]) | uint16(b[94])<<8
		m.EncryptionKey = &key
	}

	return m, nil
}

func getLanguage(b []byte) *string {
	if b[0] != '*' {
		return nil
	}
	lang := strings.Trim(string(b[1:]), "\x00")
	if lang == "" {
		return nil
	}
	return &lang
}

func getStudio(b []byte) *string {
	studio := strings.Trim(string(b), "\x00")
	if studio == "" {
		return nil
	}
	return &studio
}

func getOptional(b []byte) *string {
	if b[0] != ' ' {
		return nil
	}
	v := strings.TrimSpace(string(b[1:]))
	if v == "" {
		return nil
	}
	return &v
}

func getOffset(b []byte) (*Offset, error) {
	frames, err := bcd.Decode(b[0])
	if err != nil {
		return nil, err
	}
	seconds, err := bcd.DecodeBiased(b[1])
	if err != nil {
		return nil, err
	}
	minutes, err := bcd.DecodeBiased(b[2])
	if err != nil {
		return nil, err
	}
	hours, err := bcd.Decode(b[3])
	if err != nil {
		return nil, err
	}
	if frames == 0 && seconds == 0 && minutes == 0 && hours == 0 {
		return nil, nil
	}
	return &Offset{Frames: frames, Seconds: seconds, Minutes: minutes, Hours: hours}, nil
}

// Encode emits the 92 base bytes for m. It never synthesizes the
// encryption tail: bytes 92..95 stay unwritten even when
// m.EncryptionKey is set (see DESIGN.md Open Question decision #3).
func Encode(m *Metadata) ([]byte, error) {
	buf := make([]byte, 0, HeaderLen)

	if m.Revision == RevisionXDA && m.XDA != nil {
		buf = insertMax(buf, []byte(m.Title), ' ', 18)
		buf = insertOptional(buf, m.XDA.Source, ' ', 12)
		buf = insertOptional(buf, m.XDA.Mix, ' ', 15)
		buf = insertOptional(buf, m.XDA.LFELevel, ' ', 2)
		if m.XDA.LFELevel != nil {
			buf = append(buf, 'D')
		} else {
			buf = append(buf, ' ')
		}
		buf = insertOptional(buf, m.XDA.SurroundDelay, ' ', 3)
		buf = insertOptional(buf, m.XDA.Filters, ' ', 3)
		buf = append(buf, ' ')
	} else if m.Revision != RevisionH1 {
		buf = insertMax(buf, []byte(m.Title), 0, 60)
	} else {
		buf = insertMax(buf, []byte(m.Title), 0, 67)
	}

	if m.Revision != RevisionH1 {
		if m.Language != nil {
			buf = append(buf, '*')
			buf = insertMax(buf, []byte(*m.Language), 0, 4)
		} else {
			buf = append(buf, make([]byte, 5)...)
		}
		buf = append(buf, 0, 0)
	}

	// byte 67: studio (leading space, text at 68..72)
	buf = insertOptional(buf, m.Studio, 0, 4)

	// byte 72
	buf = append(buf, 0, 0, 0)

	// byte 75: optical backup
	buf = append(buf, byte(m.OpticalBackup), 0, 0)

	// byte 78: reel
	buf = append(buf, m.Reel, 0)

	// byte 80: id
	buf = append(buf, byte(m.ID), byte(m.ID>>8))

	// byte 82: tracks
	buf = append(buf, m.Tracks, 0)

	// byte 84: start offset
	sb, err := encodeOffset(m.StartOffset)
	if err != nil {
		return nil, err
	}
	buf = append(buf, sb...)

	// byte 88: end offset
	eb, err := encodeOffset(m.EndOffset)
	if err != nil {
		return nil, err
	}
	buf = append(buf, eb...)

	if len(buf) != HeaderLen {
		return nil, dtserr.UnexpectedSize("encoded snd header", HeaderLen, len(buf))
	}
	return buf, nil
}

func insertOptional(buf []byte, value *string, fill byte, length int) []byte {
	if value != nil {
		buf = append(buf, ' ')
		return insertMax(buf, []byte(*value), fill, length)
	}
	pad := make([]byte, length+1)
	for i := range pad {
		pad[i] = fill
	}
	return append(buf, pad...)
}

func insertMax(buf []byte, value []byte, fill byte, max int) []byte {
	if len(value) >= max {
		return append(buf, value[:max]...)
	}
	buf = append(buf, value...)
	pad := make([]byte, max-len(value))
	for i := range pad {
		pad[i] = fill
	}
	return append(buf, pad...)
}

func encodeOffset(o *Offset) ([]byte, error) {
	if o == nil {
		return []byte{0, 0, 0, 0}, nil
	}
	frames, err := bcd.Encode(o.Frames)
	if err != nil {
		return nil, err
	}
	seconds, err := bcd.Encode(o.Seconds)
	if err != nil {
		return nil, err
	}
	minutes, err := bcd.Encode(o.Minutes)
	if err != nil {
		return nil, err
	}
	hours, err := bcd.Encode(o.Hours)
	if err != nil {
		return nil, err
	}
	return []byte{frames, seconds, minutes, hours}, nil
}

// GenericTrailersHeader is the canonical all-trailer-reel header used by
// the extract pipeline: revision XD, reel 14, tracks 5, Dolby SR
// backup, English language.
func GenericTrailersHeader() *Metadata {
	lang := "ENG"
	studio := "none"
	return &Metadata{
		Revision:      RevisionXD,
		Kind:          KindTrailer,
		ID:            1045,
		Reel:          14,
		Title:         "Trailers Reel 14",
		Studio:        &studio,
		OpticalBackup: DolbySR,
		Tracks:        5,
		Language:      &lang,
	}
}
