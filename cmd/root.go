package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"heritage_tree/internal/repository"
	"heritage_tree/internal/service"
)

// app 命令共享的运行环境
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *service.Config
	logger  *service.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "heritage",
		Short:         "Family tree editor service",
		Long:          "heritage stores a family tree document and serves it as a directory, a laid-out tree, SVG and PNG.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Stop()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default heritage.yaml)")
	flags.String("storage", "", "storage driver: memory, file, sqlite, postgres, mysql, redis, badger")
	flags.String("storage-path", "", "storage path for file, sqlite and badger drivers")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = a.v.BindPFlag("storage.driver", flags.Lookup("storage"))
	_ = a.v.BindPFlag("storage.path", flags.Lookup("storage-path"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newServeCommand(a),
		newRenderCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newIngestCommand(a),
		newPublishCommand(a),
	)
	return root
}

// init 读取配置并创建日志器
func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("heritage")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := service.LoadConfig(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = service.NewLogger(cfg.LoggerConfig())
	return nil
}

// openPeople 打开持久化并加载成员
func (a *app) openPeople(ctx context.Context, metrics *service.Metrics) (*service.PeopleService, func(), error) {
	store, err := repository.Open(a.cfg.StorageOptions())
	if err != nil {
		return nil, nil, service.NewError(service.ErrDatabase, "failed to open storage", err)
	}
	people := service.NewPeopleService(store, a.logger).WithMetrics(metrics)
	if err := people.Load(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	a.logger.Debug("Opened %s storage with %d people", a.cfg.Storage.Driver, people.Len())
	closer := func() {
		if err := store.Close(); err != nil {
			a.logger.Error("Failed to close storage: %v", err)
		}
	}
	return people, closer, nil
}

// newAI 创建 AI 客户端，未配置密钥时返回 nil
func (a *app) newAI() (*service.OpenAIClient, error) {
	if a.cfg.AI.APIKey == "" {
		return nil, nil
	}
	return service.NewOpenAIClient(a.cfg.AIConfig(), a.logger)
}
