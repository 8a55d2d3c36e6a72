package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"gopkg.in/yaml.v2"

	"github.com/spf13/viper"

	"signal_bot/internal/config"
)

const (
	defaultBaseName = "base"
	strategiesKey   = "strategies"
)

// renderValues: base без секции strategies + strategies.<name> поверх, strategy = name.
func renderValues(base *viper.Viper, name string) ([]byte, error) {
	if !base.IsSet(strategiesKey + "." + name) {
		return nil, errors.Errorf("strategy %q not found in base config", name)
	}

	common := base.AllSettings()
	delete(common, strategiesKey)

	resultConfig := viper.New()
	if err := resultConfig.MergeConfigMap(common); err != nil {
		return nil, errors.Wrap(err, "merge base settings")
	}
	if override := base.Sub(strategiesKey + "." + name); override != nil {
		if err := resultConfig.MergeConfigMap(override.AllSettings()); err != nil {
			return nil, errors.Wrapf(err, "merge %s settings", name)
		}
	}
	resultConfig.Set("strategy", name)

	bs, err := yaml.Marshal(resultConfig.AllSettings())
	if err != nil {
		return nil, errors.Wrap(err, "marshal config to yaml")
	}

	// то, что пишем, должно проходить валидацию бота
	cfg := config.Default()
	if err := yaml.NewDecoder(bytes.NewReader(bs)).Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decode rendered config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "validate %s config", name)
	}
	return bs, nil
}

func writeValues(dir, name string, content []byte) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("values_%s.yaml", name))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrap(err, "write values file")
	}
	return path, nil
}

func strategyNames(base *viper.Viper) []string {
	names := make([]string, 0)
	for name := range base.GetStringMap(strategiesKey) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func main() {
	dir := flag.String("dir", "configs", "directory with base.yaml and generated values files")
	only := flag.String("strategy", "", "render only this strategy")
	flag.Parse()

	viper.SetConfigName(defaultBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(*dir)
	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	names := strategyNames(viper.GetViper())
	if *only != "" {
		names = []string{*only}
	}
	if len(names) == 0 {
		panic("has no strategies in base config")
	}

	for _, name := range names {
		content, err := renderValues(viper.GetViper(), name)
		if err != nil {
			panic(fmt.Errorf("can't render %s: %w", name, err))
		}
		path, err := writeValues(*dir, name, content)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s file complete\n", path)
	}
	fmt.Println("done")
}
