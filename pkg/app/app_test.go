package app_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/app"
	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/integration/registry"
	"github.com/chatspace-app/chatspace/pkg/logger"
	testutils "github.com/chatspace-app/chatspace/pkg/utils/test"
)

var _ = Describe("App", func() {
	var (
		ctx context.Context
		cfg *config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.NewDefaultConfig()
		cfg.Storage.Driver = config.StorageDriverMemory
	})

	It("requires a config and a logger", func() {
		_, err := app.New(ctx, nil, "", logger.Nop())
		Expect(err).To(MatchError("config is required"))

		_, err = app.New(ctx, cfg, "", nil)
		Expect(err).To(MatchError("logger is required"))
	})

	It("rejects an unknown storage driver", func() {
		cfg.Storage.Driver = "dynamo"
		_, err := app.New(ctx, cfg, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unsupported storage driver")))
	})

	It("rejects an unknown events provider", func() {
		cfg.Events.Provider = "nats"
		_, err := app.New(ctx, cfg, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unsupported events provider")))
	})

	It("pushes through the configured store", func() {
		mock := testutils.NewMockIntegration("minima", "example.deta.app")
		a, err := app.New(ctx, cfg, "", logger.Nop(),
			registry.WithFactory("minima", testutils.MockFactory(mock, nil)),
		)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(a.Close)

		Expect(a.Store.Put(ctx, integration.Config{Key: "minima", Instance: "example.deta.app", APIKey: "k"})).To(Succeed())

		res, err := a.Dispatcher.Push(ctx, "minima", "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Reference).To(Equal("https://example.deta.app/notes/hello"))
	})

	It("uses the file store in the given config directory by default", func() {
		cfg.Storage.Driver = config.StorageDriverFile
		dir := GinkgoT().TempDir()

		a, err := app.New(ctx, cfg, dir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Store.Put(ctx, integration.Config{Key: "minima", Instance: "example.deta.app", APIKey: "k"})).To(Succeed())
		Expect(a.Close()).To(Succeed())

		reopened, err := app.New(ctx, cfg, dir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(reopened.Close)

		summaries, err := reopened.Registry.Configured(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(summaries).To(ConsistOf(integration.Summary{Key: "minima", Instance: "example.deta.app"}))
	})

	It("reads the push timeout from config", func() {
		cfg.Push.Timeout = "50ms"
		mock := testutils.NewMockIntegration("minima", "example.deta.app")
		mock.Store = func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", integration.TransportError("minima", ctx.Err())
		}

		a, err := app.New(ctx, cfg, "", logger.Nop(),
			registry.WithFactory("minima", testutils.MockFactory(mock, nil)),
		)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(a.Close)
		Expect(a.Store.Put(ctx, integration.Config{Key: "minima", Instance: "example.deta.app", APIKey: "k"})).To(Succeed())

		start := time.Now()
		_, err = a.Dispatcher.Push(ctx, "minima", "hello", "")
		Expect(err).To(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))

		pe, ok := integration.AsPushError(err)
		Expect(ok).To(BeTrue())
		Expect(pe.Kind).To(Equal(integration.KindTimeout))
	})

	It("builds a Space client that is not set up without a token", func() {
		a, err := app.New(ctx, cfg, "", logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(a.Close)

		client, err := a.SpaceClient()
		Expect(err).NotTo(HaveOccurred())
		Expect(client.IsSetup()).To(BeFalse())
	})
})
