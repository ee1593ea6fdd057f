// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opts

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sitesweep/pkg/config"
	"github.com/walteh/sitesweep/pkg/log"
)

// 🎛️ RootOpts holds the persistent flags and what they resolve to
type RootOpts struct {
	ConfigFile string
	Root       string
	Debug      bool

	Config *config.Config
	Logger *log.Logger
}

// 📥 Load resolves the configuration: the --config file, else a default
// config file in the working directory, else the built-in defaults. A
// relative root in a config file is taken relative to that file. --root
// overrides both.
func (o *RootOpts) Load(ctx context.Context) error {
	path := o.ConfigFile
	if path == "" {
		path = config.FindConfig(".")
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
		if err := cfg.Validate(); err != nil {
			return errors.Errorf("validating default config: %w", err)
		}
	} else {
		loaded, err := config.LoadConfig(ctx, path)
		if err != nil {
			return err
		}
		if !filepath.IsAbs(loaded.Root) {
			loaded.Root = filepath.Join(filepath.Dir(path), loaded.Root)
		}
		cfg = loaded
	}

	if o.Root != "" {
		cfg.Root = filepath.Clean(o.Root)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration resolved")
	o.Config = cfg
	return nil
}
