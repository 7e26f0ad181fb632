package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/chatspace-app/chatspace/pkg/config"
)

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("overlays file values on top of defaults", func() {
			data := `version = 0

[storage]
driver = "sqlite"
sqlite_path = "/tmp/chatspace.db"

[push]
timeout = "10s"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Storage.Driver).To(Equal("sqlite"))
			Expect(cfg.Storage.SQLitePath).To(Equal("/tmp/chatspace.db"))
			Expect(cfg.Push.TimeoutDuration()).To(Equal(10 * time.Second))
			Expect(cfg.API.Listen).To(Equal(config.NewDefaultConfig().API.Listen))
			Expect(cfg.Space.BaseURL).To(Equal("https://deta.space/api/v0"))
		})

		It("rejects an unsupported version", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 7\n"), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 7")))
		})

		It("returns an error for malformed TOML", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[storage\n"), 0o600)).To(Succeed())

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.LoadConfig()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SaveConfig", func() {
		It("writes config.toml with owner-only permissions", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Space.AccessToken = "token"
			Expect(c.SaveConfig(cfg)).To(Succeed())

			info, err := os.Stat(c.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Space.AccessToken).To(Equal("token"))
		})

		It("rejects a nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue / GetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("round-trips a value through the file", func() {
			Expect(c.SetConfigValue("api.listen", ":9999")).To(Succeed())

			value, err := c.GetConfigValue("api.listen")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(":9999"))
		})

		It("rejects unknown keys", func() {
			err := c.SetConfigValue("proxy.upstream", "x")
			Expect(err).To(MatchError(ContainSubstring(`unknown config key: "proxy.upstream"`)))

			_, err = c.GetConfigValue("proxy.upstream")
			Expect(err).To(HaveOccurred())
		})

		It("validates push.timeout", func() {
			Expect(c.SetConfigValue("push.timeout", "soon")).To(MatchError(ContainSubstring("invalid value for push.timeout")))
			Expect(c.SetConfigValue("push.timeout", "-1s")).To(MatchError(ContainSubstring("must be positive")))
			Expect(c.SetConfigValue("push.timeout", "45s")).To(Succeed())
		})

		It("validates enumerated keys", func() {
			Expect(c.SetConfigValue("storage.driver", "mongo")).To(MatchError(ContainSubstring("invalid value for storage.driver")))
			Expect(c.SetConfigValue("events.provider", "kafka")).To(Succeed())
		})

		It("trims trailing slashes from space.base_url", func() {
			Expect(c.SetConfigValue("space.base_url", "https://space.example/api/v0/")).To(Succeed())
			value, err := c.GetConfigValue("space.base_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("https://space.example/api/v0"))
		})
	})
})

var _ = Describe("config keys", func() {
	It("lists every key in section order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys[0]).To(Equal("storage.driver"))
		Expect(keys).To(ContainElements("push.timeout", "space.access_token", "events.topic"))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue(), k)
		}
	})

	It("marks credentials as secret", func() {
		Expect(config.IsSecretConfigKey("space.access_token")).To(BeTrue())
		Expect(config.IsSecretConfigKey("storage.postgres_dsn")).To(BeTrue())
		Expect(config.IsSecretConfigKey("api.listen")).To(BeFalse())
	})
})

var _ = Describe("EventsConfig", func() {
	It("splits and trims the broker list", func() {
		e := config.EventsConfig{Brokers: " kafka-1:9092, ,kafka-2:9092 "}
		Expect(e.BrokerList()).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
	})

	It("returns nothing for an empty broker list", func() {
		Expect(config.EventsConfig{}.BrokerList()).To(BeEmpty())
	})
})

var _ = Describe("PushConfig", func() {
	It("falls back to 30s for invalid durations", func() {
		Expect(config.PushConfig{Timeout: "nope"}.TimeoutDuration()).To(Equal(30 * time.Second))
		Expect(config.PushConfig{}.TimeoutDuration()).To(Equal(30 * time.Second))
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("storage.driver")).To(Equal(defaults.Storage.Driver))
		Expect(v.GetString("api.listen")).To(Equal(defaults.API.Listen))
		Expect(v.GetDuration("push.timeout")).To(Equal(30 * time.Second))
	})

	It("env vars take precedence over config file values", func() {
		data := `[push]
timeout = "5s"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		GinkgoT().Setenv("CHATSPACE_PUSH_TIMEOUT", "12s")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("push.timeout")).To(Equal("12s"))
	})

	Describe("FromViper", func() {
		It("builds a Config from the merged view", func() {
			data := `[events]
provider = "kafka"
brokers = "localhost:9092"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.FromViper(v)
			Expect(cfg.Events.Provider).To(Equal("kafka"))
			Expect(cfg.Events.BrokerList()).To(Equal([]string{"localhost:9092"}))
			Expect(cfg.Events.Topic).To(Equal("chatspace.pushes"))
		})

		It("falls back to SPACE_ACCESS_TOKEN", func() {
			GinkgoT().Setenv("SPACE_ACCESS_TOKEN", "from-env")

			v, err := config.InitViper(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.FromViper(v).Space.AccessToken).To(Equal("from-env"))
		})
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bindflag-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("lets an explicit flag win over the config file", func() {
		data := `[api]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &listen)
		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPIListen})
		Expect(v.GetString("api.listen")).To(Equal(":7777"))
	})

	It("falls through to the config file when the flag is not set", func() {
		data := `[api]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Registry, []string{config.FlagAPIListen})
		Expect(v.GetString("api.listen")).To(Equal(":5555"))
	})

	It("skips registry keys that are not defined", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.FlagSet{}, []string{"nonexistent"})

		Expect(v.GetString("api.listen")).To(Equal(config.NewDefaultConfig().API.Listen))
	})

	It("takes duration defaults from NewDefaultConfig", func() {
		cmd := &cobra.Command{Use: "test"}
		var timeout time.Duration
		config.AddDurationFlag(cmd, config.Registry, config.FlagPushTimeout, &timeout)

		f := cmd.Flags().Lookup("timeout")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("30s"))
		Expect(f.Usage).To(Equal("Upper bound for a single content push"))
	})
})
