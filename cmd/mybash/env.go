package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "mybash"

// checkEnvironmentVariables fills every flag not given on the command line
// from MYBASH_<FLAG>, with dashes in the flag name read as underscores.
func checkEnvironmentVariables(command *cobra.Command) error {
	var errs []string
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)

	command.Flags().VisitAll(func(f *pflag.Flag) {
		configName := strings.ReplaceAll(f.Name, "-", "_")
		if !f.Changed && v.IsSet(configName) {
			val := v.Get(configName)
			if err := command.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				errs = append(errs, err.Error())
			}
		}
	})

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error mapping environment variables to command flags: %s", strings.Join(errs, "; "))
}
