package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
	"github.com/chatspace-app/chatspace/pkg/storage/sqlite"
	testutils "github.com/chatspace-app/chatspace/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	Context("in memory", func() {
		testutils.DriverConformance(func() storage.Driver {
			driver, err := sqlite.NewDriver(context.Background(), ":memory:")
			Expect(err).NotTo(HaveOccurred())
			return driver
		})
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			driver, err := sqlite.NewDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("persists configs across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			first, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			cfg := integration.Config{Key: "minima", Instance: "example.deta.app", APIKey: "abc123"}
			Expect(first.Put(ctx, cfg)).To(Succeed())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			got, err := second.Get(ctx, "minima")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(cfg))
		})

		It("fails for an unwritable path", func() {
			_, err := sqlite.NewDriver(context.Background(), filepath.Join(GinkgoT().TempDir(), "missing", "dir", "test.db"))
			Expect(err).To(HaveOccurred())
		})
	})
})
