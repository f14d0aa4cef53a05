package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/fstree/internal/cli"
	"github.com/temirov/fstree/internal/utils"
)

// main is the entry point for the fstree command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(false)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	applicationExecutionError := cli.Execute(context.Background(), cli.Dependencies{Logger: loggerInstance})
	if applicationExecutionError == nil {
		return
	}
	var exitError *cli.ExitError
	if errors.As(applicationExecutionError, &exitError) {
		_ = loggerInstance.Sync()
		os.Exit(exitError.Code)
	}
	loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
}
