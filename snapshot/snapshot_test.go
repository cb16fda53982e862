package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-laurent/crep/blobstore"
	"github.com/vincent-laurent/crep/codec"
	"github.com/vincent-laurent/crep/frame"
)

func sampleTable() *frame.Table {
	return frame.FromRecords(
		[]string{"id", "t1", "t2", "label", "score", "ok"},
		[][]frame.Value{
			{int64(1), int64(0), int64(5), "alpha", 0.25, true},
			{int64(1), int64(5), int64(80), nil, 0.5, false},
			{int64(2), float64(0.5), float64(90), "beta", nil, nil},
		},
	)
}

func TestSnapshotRoundtrip(t *testing.T) {
	compressions := map[string]CompressionType{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZSTD,
	}
	codecs := map[string]codec.Codec{
		"json":    codec.JSON{},
		"go-json": codec.GoJSON{},
	}

	want := sampleTable()
	for cn, ct := range compressions {
		for kn, c := range codecs {
			t.Run(cn+"/"+kn, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Write(&buf, want, WithCompression(ct), WithCodec(c)))

				got, err := Read(&buf)
				require.NoError(t, err)
				assert.Equal(t, want.Columns(), got.Columns())
				assert.Equal(t, want.Records(), got.Records())
			})
		}
	}
}

func TestSnapshotEmptyTable(t *testing.T) {
	want := frame.New("id", "t1", "t2")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Columns(), got.Columns())
	assert.Equal(t, 0, got.NumRows())
}

func TestSnapshotBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a snapshot")))
	assert.ErrorIs(t, err, ErrBadMagic)

	_, err = Read(bytes.NewReader([]byte("xy")))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestSnapshotChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable()))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestSnapshotUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTable()))

	data := buf.Bytes()
	data[4] = 99

	_, err := Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrVersion)
}

func TestSnapshotCellEncoding(t *testing.T) {
	for _, v := range []frame.Value{nil, true, false, int64(-42), 3.5, "x:y", ""} {
		cell, err := encodeCell(v)
		require.NoError(t, err)
		got, err := decodeCell(cell)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := encodeCell(int32(1))
	assert.Error(t, err)
	_, err = decodeCell("q:bad")
	assert.Error(t, err)
	_, err = decodeCell("i:notanint")
	assert.Error(t, err)
}

func TestSnapshotSaveLoad(t *testing.T) {
	ctx := context.Background()
	want := sampleTable()

	for _, store := range []blobstore.BlobStore{
		blobstore.NewMemoryStore(),
		blobstore.NewLocalStore(t.TempDir()),
	} {
		require.NoError(t, Save(ctx, store, "tables/sample.snap", want, WithCompression(CompressionLZ4)))

		got, err := Load(ctx, store, "tables/sample.snap")
		require.NoError(t, err)
		assert.Equal(t, want.Records(), got.Records())

		_, err = Load(ctx, store, "tables/absent.snap")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	}
}
