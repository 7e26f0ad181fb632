package testutils

import (
	"context"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

// CountingDriver wraps a storage.Driver and counts reads.
type CountingDriver struct {
	storage.Driver
	gets  atomic.Int64
	lists atomic.Int64
}

func NewCountingDriver(d storage.Driver) *CountingDriver {
	return &CountingDriver{Driver: d}
}

func (c *CountingDriver) Get(ctx context.Context, key string) (integration.Config, error) {
	c.gets.Add(1)
	return c.Driver.Get(ctx, key)
}

func (c *CountingDriver) List(ctx context.Context) ([]integration.Config, error) {
	c.lists.Add(1)
	return c.Driver.List(ctx)
}

func (c *CountingDriver) Gets() int64 { return c.gets.Load() }

func (c *CountingDriver) Lists() int64 { return c.lists.Load() }

// DriverConformance declares the behaviour every storage.Driver shares.
// newDriver is called once per spec; the returned driver is closed after it.
func DriverConformance(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() {
			Expect(driver.Close()).To(Succeed())
		})
	})

	minimaCfg := integration.Config{Key: "minima", Instance: "example.deta.app", APIKey: "abc123"}

	It("returns ErrNotFound for an unknown key", func() {
		_, err := driver.Get(ctx, "minima")
		Expect(storage.IsNotFound(err)).To(BeTrue())
		Expect(err).To(MatchError(storage.ErrNotFound{Key: "minima"}))
	})

	It("stores and reads back a config", func() {
		Expect(driver.Put(ctx, minimaCfg)).To(Succeed())

		got, err := driver.Get(ctx, "minima")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(minimaCfg))
	})

	It("normalizes keys on write and read", func() {
		cfg := minimaCfg
		cfg.Key = "  Minima "
		Expect(driver.Put(ctx, cfg)).To(Succeed())

		got, err := driver.Get(ctx, "MINIMA")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Key).To(Equal("minima"))
	})

	It("overwrites an existing config", func() {
		Expect(driver.Put(ctx, minimaCfg)).To(Succeed())

		updated := integration.Config{Key: "minima", Instance: "other.deta.app", APIKey: "rotated"}
		Expect(driver.Put(ctx, updated)).To(Succeed())

		got, err := driver.Get(ctx, "minima")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(updated))

		all, err := driver.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(1))
	})

	It("rejects incomplete configs", func() {
		err := driver.Put(ctx, integration.Config{Key: "minima", Instance: "example.deta.app"})
		Expect(err).To(MatchError(integration.ErrInvalidConfig))

		_, err = driver.Get(ctx, "minima")
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})

	It("lists configs ordered by key", func() {
		Expect(driver.Put(ctx, integration.Config{Key: "zeta", Instance: "z.example", APIKey: "z"})).To(Succeed())
		Expect(driver.Put(ctx, minimaCfg)).To(Succeed())
		Expect(driver.Put(ctx, integration.Config{Key: "alpha", Instance: "a.example", APIKey: "a"})).To(Succeed())

		all, err := driver.List(ctx)
		Expect(err).NotTo(HaveOccurred())

		keys := make([]string, 0, len(all))
		for _, cfg := range all {
			keys = append(keys, cfg.Key)
		}
		Expect(keys).To(Equal([]string{"alpha", "minima", "zeta"}))
	})

	It("lists nothing when empty", func() {
		all, err := driver.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(BeEmpty())
	})

	It("deletes a config", func() {
		Expect(driver.Put(ctx, minimaCfg)).To(Succeed())
		Expect(driver.Delete(ctx, "minima")).To(Succeed())

		_, err := driver.Get(ctx, "minima")
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})

	It("returns ErrNotFound when deleting an unknown key", func() {
		err := driver.Delete(ctx, "minima")
		Expect(storage.IsNotFound(err)).To(BeTrue())
	})
}
