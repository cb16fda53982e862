// Package snapshot serializes tables into a compact, compressed container
// suitable for blob storage. The container is self describing: the header
// names the codec and compression used, so readers need no side channel.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strconv"

	"github.com/vincent-laurent/crep/blobstore"
	"github.com/vincent-laurent/crep/codec"
	"github.com/vincent-laurent/crep/frame"
)

var (
	// ErrBadMagic is returned when the input does not start with the
	// snapshot magic bytes.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("snapshot: checksum mismatch")

	// ErrVersion is returned for snapshots written by an unknown format
	// version.
	ErrVersion = errors.New("snapshot: unsupported version")

	// ErrCodec is returned when the snapshot names a codec this build does
	// not know.
	ErrCodec = errors.New("snapshot: unknown codec")
)

var magic = [4]byte{'C', 'R', 'S', 'N'}

const formatVersion = 1

// Header layout:
//
//	[0:4]   magic "CRSN"
//	[4]     format version
//	[5]     compression type
//	[6]     codec name length
//	[7:7+n] codec name
//	[...]   crc32 (IEEE) of the block, little endian
//	[...]   block (see compression.go)

// Options configure how a snapshot is written.
type Options struct {
	// Codec encodes the table payload. Defaults to codec.Default.
	Codec codec.Codec

	// Compression applied to the encoded payload. Defaults to
	// CompressionZSTD.
	Compression CompressionType
}

// WithCodec sets the payload codec.
func WithCodec(c codec.Codec) func(*Options) {
	return func(o *Options) { o.Codec = c }
}

// WithCompression sets the block compression.
func WithCompression(ct CompressionType) func(*Options) {
	return func(o *Options) { o.Compression = ct }
}

type tableSnapshot struct {
	Columns []string   `json:"columns"`
	Cells   [][]string `json:"cells"`
}

// Write serializes a table to w.
func Write(w io.Writer, t *frame.Table, optFns ...func(*Options)) error {
	opts := Options{
		Codec:       codec.Default,
		Compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	snap := tableSnapshot{Columns: t.Columns()}
	for _, rec := range t.Records() {
		row := make([]string, len(rec))
		for i, v := range rec {
			cell, err := encodeCell(v)
			if err != nil {
				return err
			}
			row[i] = cell
		}
		snap.Cells = append(snap.Cells, row)
	}

	payload, err := opts.Codec.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: encode payload: %w", err)
	}
	block, err := compressBlock(payload, opts.Compression)
	if err != nil {
		return err
	}

	name := opts.Codec.Name()
	if len(name) > 255 {
		return errors.New("snapshot: codec name too long")
	}

	header := make([]byte, 0, 7+len(name)+4)
	header = append(header, magic[:]...)
	header = append(header, formatVersion, byte(opts.Compression), byte(len(name)))
	header = append(header, name...)
	header = binary.LittleEndian.AppendUint32(header, crc32.ChecksumIEEE(block))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(block)
	return err
}

// Read deserializes a table written by Write.
func Read(r io.Reader) (*frame.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < 7 {
		return nil, ErrBadMagic
	}
	if [4]byte(data[:4]) != magic {
		return nil, ErrBadMagic
	}
	if data[4] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}
	compression := CompressionType(data[5])
	nameLen := int(data[6])
	if len(data) < 7+nameLen+4 {
		return nil, errors.New("snapshot: truncated header")
	}
	name := string(data[7 : 7+nameLen])

	sum := binary.LittleEndian.Uint32(data[7+nameLen:])
	block := data[7+nameLen+4:]
	if crc32.ChecksumIEEE(block) != sum {
		return nil, ErrChecksum
	}

	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCodec, name)
	}

	payload, err := decompressBlock(block, compression)
	if err != nil {
		return nil, err
	}

	var snap tableSnapshot
	if err := c.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("snapshot: decode payload: %w", err)
	}

	records := make([][]frame.Value, len(snap.Cells))
	for i, row := range snap.Cells {
		if len(row) != len(snap.Columns) {
			return nil, errors.New("snapshot: row width does not match columns")
		}
		rec := make([]frame.Value, len(row))
		for j, cell := range row {
			v, err := decodeCell(cell)
			if err != nil {
				return nil, err
			}
			rec[j] = v
		}
		records[i] = rec
	}
	return frame.FromRecords(snap.Columns, records), nil
}

// Save writes a table snapshot to a blob store under the given name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, t *frame.Table, optFns ...func(*Options)) error {
	var buf bytes.Buffer
	if err := Write(&buf, t, optFns...); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

// Load reads a table snapshot from a blob store.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*frame.Table, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data))
}

// Cells are tagged strings so typed values survive any codec losslessly:
// "_" for null, "b:" bool, "i:" int64, "f:" float64, "s:" string.
func encodeCell(v frame.Value) (string, error) {
	switch x := v.(type) {
	case nil:
		return "_", nil
	case bool:
		return "b:" + strconv.FormatBool(x), nil
	case int64:
		return "i:" + strconv.FormatInt(x, 10), nil
	case float64:
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return "s:" + x, nil
	default:
		return "", fmt.Errorf("snapshot: unsupported value type %T", v)
	}
}

func decodeCell(cell string) (frame.Value, error) {
	if cell == "_" {
		return nil, nil
	}
	if len(cell) < 2 || cell[1] != ':' {
		return nil, fmt.Errorf("snapshot: malformed cell %q", cell)
	}
	body := cell[2:]
	switch cell[0] {
	case 'b':
		v, err := strconv.ParseBool(body)
		if err != nil {
			return nil, fmt.Errorf("snapshot: malformed cell %q", cell)
		}
		return v, nil
	case 'i':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot: malformed cell %q", cell)
		}
		return v, nil
	case 'f':
		v, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot: malformed cell %q", cell)
		}
		return v, nil
	case 's':
		return body, nil
	default:
		return nil, fmt.Errorf("snapshot: malformed cell %q", cell)
	}
}
