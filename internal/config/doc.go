// Package config は設定ファイルと環境変数の読み込みを提供する。
//
// 設定ファイルは拡張子で形式を判定する（.yaml / .yml / .json）。
// 環境変数 DUPFIND_* はファイルの値を上書きし、.env ファイルから
// 読み込むこともできる。コマンドラインフラグはさらにその上に適用される。
//
// # 設定例
//
//	scan:
//	  root: /data
//	  workers: 8
//	  min_size: 1024
//	  filter: 'ext != ".tmp"'
//	  skip_hidden: true
//	output:
//	  format: json
//	log:
//	  level: info
//	server:
//	  addr: ":8080"
//
// # 使用例
//
//	cfg, err := config.LoadFile("dupfind.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	scanCfg := cfg.ToScanConfig()
package config
