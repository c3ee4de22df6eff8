/*
Package logging provides the shared logrus setup for the repgo toolbox.

All repgo packages log through one logger so a single Setup call controls
level, colors, and destination for the whole toolbox:

	log, err := logging.Setup(logging.Config{Level: "debug", ForceColors: true})
	if err != nil {
		panic(err)
	}
	log.Info("ready")

Component packages tag their entries:

	logging.WithComponent("dispatch").Warn("progress callback panicked")
*/
package logging
