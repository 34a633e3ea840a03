package xsnapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/omeyang/xoui/pkg/oui/xregistry"
)

// Version 是当前快照格式版本，记录结构变化时递增。
const Version uint8 = 1

// FlagZstd 表示负载经过 zstd 压缩。
const FlagZstd uint8 = 1 << 0

var magic = [8]byte{'X', 'O', 'U', 'I', 'S', 'N', 'A', 'P'}

const headerSize = len(magic) + 1 + 1 + 8

// maxPayload 限制负载大小，防止损坏的文件触发超大分配。
const maxPayload = 512 << 20

// Snapshot 是快照的内容。
type Snapshot struct {
	CreatedAt time.Time          `cbor:"1,keyasint"`
	Records   []xregistry.Record `cbor:"2,keyasint"`
}

// Meta 描述一个快照文件。
type Meta struct {
	Version    uint8
	Compressed bool
	CreatedAt  time.Time
	Records    int
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// 确定性编码：相同记录集合产生相同字节
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("xsnapshot: cbor encoder mode: %v", err))
	}

	// MA-L 表有数万条记录，超过默认的数组长度上限
	decOpts := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyQuiet,
		MaxArrayElements: 1 << 24,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("xsnapshot: cbor decoder mode: %v", err))
	}
}

// Encode 把快照写入 w。
func Encode(w io.Writer, snap Snapshot, compress bool) error {
	payload, err := encMode.Marshal(snap)
	if err != nil {
		return fmt.Errorf("xsnapshot: encode: %w", err)
	}
	var flags uint8
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("xsnapshot: zstd: %w", err)
		}
		payload = enc.EncodeAll(payload, nil)
		_ = enc.Close()
		flags |= FlagZstd
	}

	var header [headerSize]byte
	copy(header[:], magic[:])
	header[len(magic)] = Version
	header[len(magic)+1] = flags
	binary.BigEndian.PutUint64(header[len(magic)+2:], xxhash.Sum64(payload))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("xsnapshot: write: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("xsnapshot: write: %w", err)
	}
	return nil
}

// Decode 从 r 读取快照。
func Decode(r io.Reader) (Snapshot, Meta, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Snapshot{}, Meta{}, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if !bytes.Equal(header[:len(magic)], magic[:]) {
		return Snapshot{}, Meta{}, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	meta := Meta{
		Version:    header[len(magic)],
		Compressed: header[len(magic)+1]&FlagZstd != 0,
	}
	if meta.Version != Version {
		return Snapshot{}, meta, fmt.Errorf("%w: file version %d, want %d", ErrVersionMismatch, meta.Version, Version)
	}

	payload, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return Snapshot{}, meta, fmt.Errorf("%w: read: %w", ErrCorrupt, err)
	}
	if len(payload) > maxPayload {
		return Snapshot{}, meta, fmt.Errorf("%w: payload exceeds %d bytes", ErrCorrupt, maxPayload)
	}
	if sum := binary.BigEndian.Uint64(header[len(magic)+2:]); sum != xxhash.Sum64(payload) {
		return Snapshot{}, meta, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	if meta.Compressed {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return Snapshot{}, meta, fmt.Errorf("xsnapshot: zstd: %w", err)
		}
		payload, err = dec.DecodeAll(payload, nil)
		dec.Close()
		if err != nil {
			return Snapshot{}, meta, fmt.Errorf("%w: decompress: %w", ErrCorrupt, err)
		}
	}

	var snap Snapshot
	if err := decMode.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, meta, fmt.Errorf("%w: decode: %w", ErrCorrupt, err)
	}
	meta.CreatedAt = snap.CreatedAt
	meta.Records = len(snap.Records)
	return snap, meta, nil
}

// Save 把 store 的全部记录（含学习层）原子地写入 path。
func Save(path string, store *xregistry.Store, compress bool) (Meta, error) {
	snap := Snapshot{
		CreatedAt: time.Now().UTC(),
		Records:   slices.Collect(store.Records()),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Meta{}, fmt.Errorf("xsnapshot: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return Meta{}, fmt.Errorf("xsnapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (Meta, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return Meta{}, err
	}

	if err := Encode(tmp, snap, compress); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("xsnapshot: sync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("xsnapshot: close: %w", err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return Meta{}, fmt.Errorf("xsnapshot: rename: %w", err)
	}
	return Meta{Version: Version, Compressed: compress, CreatedAt: snap.CreatedAt, Records: len(snap.Records)}, nil
}

// Load 读取 path 并构建 Store。文件不存在时错误匹配 [os.ErrNotExist]。
func Load(ctx context.Context, path string, opts ...xregistry.Option) (*xregistry.Store, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("xsnapshot: %w", err)
	}
	defer f.Close()

	snap, meta, err := Decode(f)
	if err != nil {
		return nil, meta, err
	}
	return xregistry.Build(ctx, snap.Records, opts...), meta, nil
}

// Stat 只读取快照的元信息并校验完整性。
func Stat(path string) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, fmt.Errorf("xsnapshot: %w", err)
	}
	defer f.Close()
	_, meta, err := Decode(f)
	return meta, err
}
