package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/offer-finder/api/internal/bootstrap"
	"github.com/sngm3741/offer-finder/api/internal/catalog/domain"
	"github.com/sngm3741/offer-finder/api/internal/config"
	mongodoc "github.com/sngm3741/offer-finder/api/internal/infrastructure/mongo"
	"github.com/sngm3741/offer-finder/api/internal/logging"
)

type seedOptions struct {
	envFile         string
	dataDir         string
	dropCollections bool
	verbose         bool
}

type companyDataset struct {
	companyID string
	stores    []domain.Store
}

func main() {
	opts := parseFlags()

	logger, err := logging.New(opts.verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil {
			logger.Fatal("環境変数の読み込みに失敗しました", zap.Error(err))
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if opts.dataDir == "" {
		opts.dataDir = cfg.DataDir
	}

	datasets, err := readDatasets(opts.dataDir)
	if err != nil {
		logger.Fatal("データセットの読み込みに失敗しました", zap.Error(err))
	}
	if len(datasets) == 0 {
		logger.Fatal("no dataset files found", zap.String("dir", opts.dataDir))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := bootstrap.ConnectMongo(ctx, cfg)
	if err != nil {
		logger.Fatal("MongoDB 接続に失敗しました", zap.Error(err))
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)
	if opts.dropCollections {
		if err := db.Collection(cfg.StoreCollection).Drop(ctx); err != nil {
			// Drop は存在しない場合も err を返すので warning ログにとどめる
			logger.Warn("コレクションの削除に失敗", zap.String("collection", cfg.StoreCollection), zap.Error(err))
		} else {
			logger.Info("既存コレクションを削除しました", zap.String("collection", cfg.StoreCollection))
		}
	}

	repo := mongodoc.NewStoreRepository(db, cfg.StoreCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("インデックス作成に失敗しました", zap.Error(err))
	}

	total := 0
	for _, ds := range datasets {
		n, err := repo.ReplaceCompany(ctx, ds.companyID, ds.stores)
		if err != nil {
			logger.Fatal("店舗データの挿入に失敗しました", zap.String("company_id", ds.companyID), zap.Error(err))
		}
		logger.Info("company seeded", zap.String("company_id", ds.companyID), zap.Int("stores", n))
		total += n
	}

	logger.Info("Seed 完了",
		zap.Int("companies", len(datasets)),
		zap.Int("stores", total),
		zap.String("mongo_db", cfg.MongoDatabase))
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env-file", "", "読み込む env ファイル (例: ../env/local.env)")
	flag.StringVar(&opts.dataDir, "data", "", "<companyId>.json を含むディレクトリ (既定: DATA_DIR)")
	flag.BoolVar(&opts.dropCollections, "drop", false, "既存コレクションを削除してから投入する")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	flag.Parse()
	return opts
}

// readDatasets decodes every <companyId>.json in dir, sorted by company id.
func readDatasets(dir string) ([]companyDataset, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	datasets := make([]companyDataset, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		stores, err := domain.DecodeStores(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		datasets = append(datasets, companyDataset{
			companyID: strings.TrimSuffix(filepath.Base(path), ".json"),
			stores:    stores,
		})
	}
	return datasets, nil
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
