package radio

import "time"

// ESP-AT command set used to drive the companion BLE module
const (
	cmdRestore     = "AT+RESTORE"       // factory restore, reboots the module
	cmdDisableWiFi = "AT+CWMODE=0"      // drop the station/AP networking role
	cmdBLEServer   = "AT+BLEINIT=2"     // BLE peripheral (server) role
	cmdAdvStart    = "AT+BLEADVSTART"   // start advertising
	cmdSetAdvData  = "AT+BLEADVDATA=%q" // replace the advertisement payload, hex string

	// Advertisement parameters: min/max interval in 0.625ms units,
	// ADV_IND, public address, all three channels, no filter policy
	cmdAdvParams = "AT+BLEADVPARAM=50,50,0,0,7,0"

	// Unsolicited banner printed after power-up and after the
	// AT+RESTORE reboot
	readyBanner = "ready"
)

// Default step timeouts
const (
	defaultBannerTimeout = 10 * time.Second
	defaultAckTimeout    = 2 * time.Second
	defaultCycleDelay    = 500 * time.Millisecond
)
