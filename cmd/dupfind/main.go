// Package main is the entry point for dupfind.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dupfind/internal/api"
	"dupfind/internal/config"
	"dupfind/internal/events"
	"dupfind/internal/logger"
	"dupfind/internal/metrics"
	"dupfind/internal/scan"
)

var (
	version = "dev"
)

// options はコマンドラインフラグの値
type options struct {
	configFile string
	envFile    string
	workers    int
	chunkSize  int
	minSize    int64
	filter     string
	skipHidden bool
	preset     string
	format     string
	addr       string
	serve      bool
	logLevel   string
}

func main() {
	var opts options

	// フラグ定義
	flag.StringVar(&opts.configFile, "config", "", "設定ファイルパス (YAML/JSON)")
	flag.StringVar(&opts.envFile, "env", "", ".env ファイルパス (省略時は ./.env があれば読み込む)")
	flag.IntVar(&opts.workers, "workers", 0, "ワーカー数 (デフォルト 4)")
	flag.IntVar(&opts.chunkSize, "chunk-size", 0, "ハッシュ読み込みサイズ (バイト)")
	flag.Int64Var(&opts.minSize, "min-size", 0, "これより小さいファイルを無視 (バイト)")
	flag.StringVar(&opts.filter, "filter", "", "JavaScript フィルタ式 (例: 'size > 1024 && ext != \".tmp\"')")
	flag.BoolVar(&opts.skipHidden, "skip-hidden", false, "ドットで始まるファイル/ディレクトリを無視")
	flag.StringVar(&opts.preset, "preset", "", "プリセット名 (--list-presets で一覧)")
	flag.StringVar(&opts.format, "format", "", "出力形式 (text, json)")
	flag.StringVar(&opts.addr, "addr", "", "API サーバーアドレス (例: :8080)")
	flag.BoolVar(&opts.serve, "serve", false, "スキャン完了後も API サーバーを維持")
	flag.StringVar(&opts.logLevel, "log-level", "", "ログレベル (debug, info, warn, error)")
	listPresets := flag.Bool("list-presets", false, "利用可能なプリセットを表示")
	showVersion := flag.Bool("version", false, "バージョンを表示")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `dupfind - Concurrent Duplicate File Finder

Usage:
  dupfind [options] [directory]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # カレントディレクトリを走査
  dupfind

  # 8ワーカーで走査し JSON で出力
  dupfind --workers 8 --format json ~/Pictures

  # 1 KiB 以上の画像だけを対象にする
  dupfind --filter '/\.(jpe?g|png)$/i.test(name)' --min-size 1024 ~/Pictures

  # プリセットで画像・動画だけを対象にする
  dupfind --preset media ~/Pictures

  # 進捗を http://localhost:8080 で公開
  dupfind --addr :8080 --serve /data
`)
	}

	flag.Parse()

	// バージョン表示
	if *showVersion {
		fmt.Printf("dupfind version %s\n", version)
		return
	}

	// プリセット一覧表示
	if *listPresets {
		printPresets()
		return
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	fileConfig, err := buildConfig(opts, set, flag.Args())
	if err != nil {
		logger.Error("", "設定エラー: %v", err)
		os.Exit(2)
	}

	if err := run(fileConfig); err != nil {
		logger.Error("", "スキャン実行エラー: %v", err)
		os.Exit(1)
	}
}

// buildConfig は設定を構築する
// 優先順位: フラグ > 環境変数 (.env を含む) > 設定ファイル > デフォルト
func buildConfig(opts options, set map[string]bool, args []string) (*config.FileConfig, error) {
	// 1. .env の読み込み
	if opts.envFile != "" {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			return nil, err
		}
	} else if err := config.LoadEnvFile(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("", "Ignoring .env: %v", err)
	}

	// 2. 設定ファイル
	fileConfig := &config.FileConfig{}
	if opts.configFile != "" {
		loaded, err := config.LoadFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("設定ファイル読み込みエラー: %w", err)
		}
		fileConfig = loaded
	}

	// 3. 環境変数
	if err := fileConfig.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// 4. フラグが明示的に指定された場合のみオーバーライド
	if set["workers"] {
		fileConfig.Scan.Workers = opts.workers
	}
	if set["chunk-size"] {
		fileConfig.Scan.ChunkSize = opts.chunkSize
	}
	if set["min-size"] {
		fileConfig.Scan.MinSize = opts.minSize
	}
	if set["filter"] {
		fileConfig.Scan.Filter = opts.filter
	}
	if set["skip-hidden"] {
		fileConfig.Scan.SkipHidden = opts.skipHidden
	}
	if set["preset"] {
		fileConfig.Scan.Preset = opts.preset
	}
	if set["format"] {
		fileConfig.Output.Format = opts.format
	}
	if set["addr"] {
		fileConfig.Server.Addr = opts.addr
	}
	if set["serve"] {
		fileConfig.Server.Serve = opts.serve
	}
	if set["log-level"] {
		fileConfig.Log.Level = opts.logLevel
	}
	if len(args) > 0 {
		fileConfig.Scan.Root = args[0]
	}

	if err := fileConfig.Validate(); err != nil {
		return nil, fmt.Errorf("設定検証エラー: %w", err)
	}
	if fileConfig.Server.Serve && fileConfig.Server.Addr == "" {
		return nil, errors.New("--serve requires --addr")
	}
	return fileConfig, nil
}

// run はスキャンを実行し、結果を標準出力に書き出す
func run(fileConfig *config.FileConfig) error {
	level, err := fileConfig.LogLevel()
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n中断シグナルを受信、投入済みのジョブを完了中...")
		cancel()
	}()

	bus := events.NewBus()
	defer bus.Close()
	collector := metrics.NewCollector("dupfind")

	scanConfig, err := fileConfig.ToScanConfig()
	if err != nil {
		return err
	}
	engine := scan.New(scanConfig)
	engine.SetEventBus(bus)
	engine.SetCollector(collector)

	// API サーバー
	serverDone := make(chan error, 1)
	if addr := fileConfig.Server.Addr; addr != "" {
		server := api.NewServer(addr, engine, bus, collector)
		go func() {
			serverDone <- server.Start(ctx)
		}()
	}

	// スキャン実行
	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	// レポート出力
	switch strings.ToLower(fileConfig.Output.Format) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	default:
		fmt.Println(result.Report())
	}

	if fileConfig.Server.Addr == "" {
		return nil
	}
	if fileConfig.Server.Serve {
		fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop the server")
		<-ctx.Done()
	} else {
		cancel()
	}
	return <-serverDone
}

// printPresets は利用可能なプリセットを表示する
func printPresets() {
	fmt.Println("利用可能なプリセット:")
	fmt.Println()

	for _, p := range scan.ListPresets() {
		fmt.Printf("  %-12s %s\n", p.Name, p.Description)
	}

	fmt.Println()
	fmt.Println("使用例: dupfind --preset media ~/Pictures")
}
