package link

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/telem/endian"
	"github.com/arloliu/telem/errs"
	"github.com/arloliu/telem/format"
)

func testFrame(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 7)
	}

	return b
}

func TestChain_RoundTrip(t *testing.T) {
	s2, err := NewCompressStage(format.CompressionS2)
	require.NoError(t, err)
	lz, err := NewCompressStage(format.CompressionLZ4)
	require.NoError(t, err)
	zs, err := NewCompressStage(format.CompressionZstd)
	require.NoError(t, err)

	frame := testFrame(300)
	for _, chain := range []Chain{nil, {s2}, {lz, zs}, {s2, lz, zs}} {
		prefix := []byte("x")
		enc, err := chain.Encode(prefix, frame)
		require.NoError(t, err)
		require.Equal(t, byte('x'), enc[0])

		dec, err := chain.Decode(nil, enc[1:])
		require.NoError(t, err)
		require.Equal(t, frame, dec)
	}
}

func TestChain_DecodeCorrupt(t *testing.T) {
	s2, err := NewCompressStage(format.CompressionS2)
	require.NoError(t, err)

	_, err = Chain{s2}.Decode(nil, []byte{0xFF, 0xFF, 0xFF})
	require.Error(t, err)
	require.Contains(t, err.Error(), "S2 stage")
}

func TestRecord_RoundTrip(t *testing.T) {
	for _, engine := range []endian.EndianEngine{endian.GetBigEndianEngine(), endian.GetLittleEndianEngine()} {
		var stream []byte
		stream = append(stream, 0x00, 0xEB, 0x13, 0x90) // noise with a false sync start
		var err error
		stream, err = AppendRecord(stream, []byte{1, 2, 3}, engine)
		require.NoError(t, err)
		stream, err = AppendRecord(stream, nil, engine)
		require.NoError(t, err)
		stream, err = AppendRecord(stream, testFrame(40), engine)
		require.NoError(t, err)

		rr := NewRecordReader(bytes.NewReader(stream), engine, 64)

		got, err := rr.Next(nil)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, got)

		got, err = rr.Next(nil)
		require.NoError(t, err)
		require.Empty(t, got)

		got, err = rr.Next(nil)
		require.NoError(t, err)
		require.Equal(t, testFrame(40), got)

		_, err = rr.Next(nil)
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestRecord_Header(t *testing.T) {
	got, err := AppendRecord(nil, []byte{0xAA}, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.Equal(t, []byte{0xEB, 0x90, 0x00, 0x01, 0xAA}, got)

	got, err = AppendRecord(nil, []byte{0xAA}, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, []byte{0xEB, 0x90, 0x01, 0x00, 0xAA}, got)

	_, err = AppendRecord(nil, make([]byte, MaxRecordPayload+1), endian.GetBigEndianEngine())
	require.ErrorIs(t, err, errs.ErrRecordTooLarge)
}

func TestRecord_Oversized(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	stream, err := AppendRecord(nil, testFrame(10), engine)
	require.NoError(t, err)
	stream, err = AppendRecord(stream, []byte{9}, engine)
	require.NoError(t, err)

	rr := NewRecordReader(bytes.NewReader(stream), engine, 4)
	_, err = rr.Next(nil)
	require.ErrorIs(t, err, errs.ErrRecordTooLarge)

	// the reader rescans past the oversized payload
	got, err := rr.Next(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, got)
}

func TestRecord_Truncated(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	stream, err := AppendRecord(nil, testFrame(10), engine)
	require.NoError(t, err)

	rr := NewRecordReader(bytes.NewReader(stream[:8]), engine, 64)
	_, err = rr.Next(nil)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	rr = NewRecordReader(bytes.NewReader([]byte{0xEB}), engine, 64)
	_, err = rr.Next(nil)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStream_SinkToSource(t *testing.T) {
	stage, err := NewCompressStage(format.CompressionLZ4)
	require.NoError(t, err)

	var wire bytes.Buffer
	sink, err := NewStreamSink(&wire, WithStage(stage), WithByteOrder(endian.GetLittleEndianEngine()))
	require.NoError(t, err)

	frames := [][]byte{testFrame(5), testFrame(120), {0x68}}
	for _, f := range frames {
		require.NoError(t, sink.Send(f))
	}

	src, err := NewStreamSource(io.NopCloser(&wire), WithStage(stage), WithByteOrder(endian.GetLittleEndianEngine()))
	require.NoError(t, err)

	got, err := src.Receive()
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, src.Run(context.Background()))

	for _, want := range frames {
		got, err := src.Receive()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	got, err = src.Receive()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStream_SourceDropsWhenFull(t *testing.T) {
	var wire bytes.Buffer
	sink, err := NewStreamSink(&wire)
	require.NoError(t, err)
	for i := range 4 {
		require.NoError(t, sink.Send([]byte{byte(i)}))
	}

	src, err := NewStreamSource(io.NopCloser(&wire), WithQueueDepth(2))
	require.NoError(t, err)
	require.NoError(t, src.Run(context.Background()))

	dropped, skipped := src.Stats()
	require.Equal(t, uint64(2), dropped)
	require.Equal(t, uint64(0), skipped)

	got, _ := src.Receive()
	require.Equal(t, []byte{0}, got)
}

func TestStream_SourceSkipsUndecodable(t *testing.T) {
	stage, err := NewCompressStage(format.CompressionS2)
	require.NoError(t, err)

	engine := endian.GetBigEndianEngine()
	stream, err := AppendRecord(nil, []byte{0xFF, 0xFF, 0xFF}, engine)
	require.NoError(t, err)
	good, err := stage.Encode(nil, []byte{7})
	require.NoError(t, err)
	stream, err = AppendRecord(stream, good, engine)
	require.NoError(t, err)

	src, err := NewStreamSource(io.NopCloser(bytes.NewReader(stream)), WithStage(stage))
	require.NoError(t, err)
	require.NoError(t, src.Run(context.Background()))

	_, skipped := src.Stats()
	require.Equal(t, uint64(1), skipped)

	got, _ := src.Receive()
	require.Equal(t, []byte{7}, got)
}

type blockingReader struct {
	closed chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.closed
	return 0, io.ErrClosedPipe
}

func (b *blockingReader) Close() error {
	close(b.closed)
	return nil
}

func TestStream_SourceCancel(t *testing.T) {
	src, err := NewStreamSource(&blockingReader{closed: make(chan struct{})})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, src.Run(ctx), context.Canceled)
}

func TestOptions_Invalid(t *testing.T) {
	_, err := NewConfig(WithQueueDepth(0))
	require.Error(t, err)
	_, err = NewConfig(WithMaxRecordSize(MaxRecordPayload + 1))
	require.Error(t, err)
	_, err = NewConfig(WithByteOrder(nil))
	require.Error(t, err)
}

func TestSinkFunc(t *testing.T) {
	var got []byte
	var s Sink = SinkFunc(func(f []byte) error {
		got = append(got, f...)
		return nil
	})
	require.NoError(t, s.Send([]byte{1}))
	require.Equal(t, []byte{1}, got)
}
