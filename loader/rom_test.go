package loader_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/loader"
)

// makeROM builds a big-endian cartridge image with a populated header.
func makeROM(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{
		0x80, 0x37, 0x12, 0x40, // layout magic
		0x00, 0x00, 0x00, 0x0F, // clock rate
		0x80, 0x00, 0x04, 0x00, // entry point
		0x00, 0x00, 0x14, 0x49, // release
		0x12, 0x34, 0x56, 0x78, // crc1
		0x9A, 0xBC, 0xDE, 0xF0, // crc2
	})
	copy(data[0x20:0x34], "TEST CART           ")
	copy(data[0x3B:0x3F], "NTEE")
	data[0x3F] = 2
	for i := loader.HeaderSize; i < size; i++ {
		data[i] = byte(i)
	}
	return data
}

func toV64(data []byte) []byte {
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 2 {
		out[i], out[i+1] = data[i+1], data[i]
	}
	return out
}

func toN64(data []byte) []byte {
	out := make([]byte, len(data))
	for i := 0; i < len(data); i += 4 {
		out[i], out[i+1], out[i+2], out[i+3] = data[i+3], data[i+2], data[i+1], data[i]
	}
	return out
}

var _ = Describe("ROM Loader", func() {
	rom := makeROM(0x1000)

	Describe("Parse", func() {
		It("should decode the header of a z64 image", func() {
			img, err := loader.Parse(rom)
			Expect(err).NotTo(HaveOccurred())

			Expect(img.Order).To(Equal(loader.OrderZ64))
			Expect(img.ClockRate).To(Equal(uint32(0x0F)))
			Expect(img.EntryPoint).To(Equal(uint64(0xFFFFFFFF80000400)))
			Expect(img.Release).To(Equal(uint32(0x1449)))
			Expect(img.CRC1).To(Equal(uint32(0x12345678)))
			Expect(img.CRC2).To(Equal(uint32(0x9ABCDEF0)))
			Expect(img.Title).To(Equal("TEST CART"))
			Expect(img.GameCode).To(Equal("NTEE"))
			Expect(img.Version).To(Equal(uint8(2)))
			Expect(img.Data).To(Equal(rom))
		})

		It("should normalize a v64 image", func() {
			img, err := loader.Parse(toV64(rom))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Order).To(Equal(loader.OrderV64))
			Expect(img.Data).To(Equal(rom))
			Expect(img.Title).To(Equal("TEST CART"))
		})

		It("should normalize an n64 image", func() {
			img, err := loader.Parse(toN64(rom))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Order).To(Equal(loader.OrderN64))
			Expect(img.Data).To(Equal(rom))
		})

		It("should not modify the input", func() {
			input := toN64(rom)
			snapshot := append([]byte{}, input...)

			_, err := loader.Parse(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(input).To(Equal(snapshot))
		})

		It("should reject images shorter than the header", func() {
			_, err := loader.Parse(rom[:0x20])
			Expect(errors.Is(err, loader.ErrTruncated)).To(BeTrue())
		})

		It("should reject an n64 image with a partial word", func() {
			_, err := loader.Parse(toN64(rom)[:0x42])
			Expect(errors.Is(err, loader.ErrTruncated)).To(BeTrue())
		})

		It("should reject an unknown layout", func() {
			data := append([]byte{}, rom...)
			data[0] = 0x00

			_, err := loader.Parse(data)
			Expect(errors.Is(err, loader.ErrUnknownFormat)).To(BeTrue())
		})
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "rom-loader-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should read an image from disk", func() {
			path := filepath.Join(tempDir, "test.v64")
			Expect(os.WriteFile(path, toV64(rom), 0644)).To(Succeed())

			img, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Data).To(Equal(rom))
		})

		It("should return error for non-existent file", func() {
			_, err := loader.Load("/nonexistent/path/test.z64")
			Expect(err).To(HaveOccurred())
		})

		It("should wrap parse errors", func() {
			path := filepath.Join(tempDir, "short.z64")
			Expect(os.WriteFile(path, rom[:4], 0644)).To(Succeed())

			_, err := loader.Load(path)
			Expect(errors.Is(err, loader.ErrTruncated)).To(BeTrue())
		})
	})
})
