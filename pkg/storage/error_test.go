package storage_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

var _ = Describe("ErrNotFound", func() {
	It("names the key", func() {
		Expect(storage.ErrNotFound{Key: "minima"}.Error()).To(Equal("integration config not found: minima"))
		Expect(storage.ErrNotFound{}.Error()).To(Equal("integration config not found"))
	})

	It("is detected through wrapping", func() {
		err := fmt.Errorf("loading: %w", storage.ErrNotFound{Key: "minima"})
		Expect(storage.IsNotFound(err)).To(BeTrue())
		Expect(storage.IsNotFound(errors.New("boom"))).To(BeFalse())
	})
})

var _ = Describe("ValidateForPut", func() {
	It("normalises the key and trims fields", func() {
		cfg, err := storage.ValidateForPut(integration.Config{
			Key:      "  Minima ",
			Instance: " notes.example.app ",
			APIKey:   " secret ",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(integration.Config{Key: "minima", Instance: "notes.example.app", APIKey: "secret"}))
	})

	It("rejects blank fields", func() {
		_, err := storage.ValidateForPut(integration.Config{Key: "minima", Instance: "  "})
		Expect(err).To(MatchError(integration.ErrInvalidConfig))
		Expect(err.Error()).To(ContainSubstring("instance"))
	})
})

var _ = Describe("NormalizeKey", func() {
	It("lower-cases and trims", func() {
		Expect(storage.NormalizeKey(" MINIMA\t")).To(Equal("minima"))
	})
})
