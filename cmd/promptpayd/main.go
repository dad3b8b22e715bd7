package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/promptpage/promptpay-daemon/internal/config"
	"github.com/promptpage/promptpay-daemon/internal/core/application"
	dbbadger "github.com/promptpage/promptpay-daemon/internal/infrastructure/storage/db/badger"
	httpinterface "github.com/promptpage/promptpay-daemon/internal/interfaces/http"
	"github.com/promptpage/promptpay-daemon/pkg/explorer/ergo"
	"github.com/promptpage/promptpay-daemon/pkg/nodewallet"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
	dbManager, err := dbbadger.NewDbManager(dbDir, nil)
	if err != nil {
		log.WithError(err).Fatal("error while opening db")
	}
	defer dbManager.Close()

	explorerSvc, err := ergo.NewService(
		config.GetString(config.ExplorerEndpointKey),
		config.GetString(config.NodeEndpointKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while connecting to explorer")
	}

	// Without a node api key the custodial payment path stays disabled and
	// only externally signed transactions can be submitted.
	var wallet application.NodeWallet
	if apiKey := config.GetString(config.NodeAPIKeyKey); apiKey != "" {
		client, err := nodewallet.NewClient(
			config.GetString(config.NodeEndpointKey), apiKey,
		)
		if err != nil {
			log.WithError(err).Fatal("error while setting up node wallet")
		}
		wallet = client
	}

	svc, err := application.NewPaymentService(
		dbbadger.NewCompositionRepositoryImpl(dbManager),
		dbbadger.NewPaymentRepositoryImpl(dbManager),
		explorerSvc,
		wallet,
		config.GetString(config.PlatformAddressKey),
		config.GetUint64(config.PlatformFeeKey),
		config.GetUint64(config.MinBoxValueKey),
		config.GetUint64(config.NetworkFeeKey),
		int64(config.GetInt(config.MinConfirmationsKey)),
		config.GetBool(config.StrictVerificationKey),
		config.GetString(config.CommitmentRegisterKey),
		config.GetString(config.MetadataRegisterKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while setting up payment service")
	}

	server := httpinterface.NewServer(
		config.GetInt(config.HTTPListeningPortKey), svc,
	)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("error while serving http interface")
		}
	}()
	defer server.Stop()

	log.Debug("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}
