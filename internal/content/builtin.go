package content

import "drone-assembly-service/internal/domain"

// DefaultPackID names the built-in lesson pack.
const DefaultPackID = "drone-basics"

// Builtin returns the embedded drone-basics lesson pack. It is the fallback
// when no Postgres content store is configured and the seed data for tests.
func Builtin() Pack {
	return Pack{
		ID: DefaultPackID,
		Lessons: map[domain.Kind]Lesson{
			domain.KindPropeller: {
				Title:   "Propeller",
				Summary: "Generates thrust by accelerating air. Size and pitch affect efficiency, speed, and current draw.",
				Gotchas: []string{
					"CW vs CCW orientation must match motor direction.",
					"Too much pitch or diameter can overdraw current and overheat the motor and ESC.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "If prop pitch increases (all else equal), motor load generally...",
						Options:      []string{"Increases", "Decreases", "Stays identical"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "A propeller spinning opposite its marked direction will...",
						Options:      []string{"Push air the wrong way", "Produce extra thrust", "Spin the motor backwards safely"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindMotor: {
				Title:   "Brushless Motor",
				Summary: "Spins the prop. Kv (roughly RPM per volt) shapes the speed versus torque trade-off.",
				Gotchas: []string{
					"High Kv often suits smaller props (higher RPM, lower torque).",
					"Overheating usually means too much load or poor cooling.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "Higher Kv generally means...",
						Options:      []string{"More RPM per volt", "More torque per amp", "Lower RPM per volt"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "A motor that runs hot under load most likely has...",
						Options:      []string{"Too much load or poor cooling", "Too little pitch on the prop", "A faulty receiver"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindESC: {
				Title:   "ESC (Electronic Speed Controller)",
				Summary: "Turns battery DC into timed 3-phase power for the motor; controls speed via PWM and commutation.",
				Gotchas: []string{
					"ESC rating must exceed peak current draw, with margin.",
					"Signal protocol (PWM/DShot) must match the flight controller.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "An undersized ESC most commonly fails due to...",
						Options:      []string{"Overcurrent and overheating", "Too much thrust", "Low battery voltage"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "The ESC drives the motor with...",
						Options:      []string{"Timed 3-phase power", "Raw battery DC", "An analog video signal"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindPDB: {
				Title:   "Power Distribution Panel (PDB)",
				Summary: "Splits battery power to ESCs and accessories; often includes filtering or a BEC.",
				Gotchas: []string{
					"Bad solder joints create voltage drop and heat.",
					"Filtering reduces video noise and FC interference.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "A PDB is mainly used to...",
						Options:      []string{"Distribute battery power", "Control yaw", "Transmit FPV video"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "Poor solder joints on a PDB typically cause...",
						Options:      []string{"Voltage drop and heat", "Extra thrust", "Better video quality"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindFlightController: {
				Title:   "Flight Controller",
				Summary: "The drone's brain: reads sensors, runs stabilization loops, and commands the ESCs.",
				Gotchas: []string{
					"Wrong orientation or calibration can cause an instant flip on arm.",
					"Vibration isolation improves gyro signal quality.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "The FC outputs commands primarily to...",
						Options:      []string{"ESCs", "Props directly", "Battery cells"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "A misconfigured board orientation usually shows up as...",
						Options:      []string{"A flip on arming", "Longer flight time", "Weaker video signal"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindReceiver: {
				Title:   "Control Receiver",
				Summary: "Receives pilot and control-link commands and feeds them to the flight controller.",
				Gotchas: []string{
					"Antenna placement matters: avoid carbon shadowing and noisy wires.",
					"Configure failsafe behavior to prevent flyaways.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "Failsafe defines behavior when...",
						Options:      []string{"Signal is lost", "Battery is full", "Props are removed"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "Receiver antennas should be kept away from...",
						Options:      []string{"Carbon frame shadowing and noisy wires", "The flight controller entirely", "Any power source on the craft"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindVideoTransmitter: {
				Title:   "FPV Video Transmitter (VTX)",
				Summary: "Sends the FPV camera feed to goggles or a ground receiver. Higher power can mean more heat.",
				Gotchas: []string{
					"Never power a VTX without an antenna attached.",
					"Higher power can cause overheating and RF interference.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "A VTX should not be powered without...",
						Options:      []string{"An antenna", "A flight controller", "A motor"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "Raising VTX output power tends to...",
						Options:      []string{"Increase heat and RF interference", "Reduce video latency to zero", "Lower current draw"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindAntenna: {
				Title:   "Antenna",
				Summary: "Radiates and receives RF for video or control. Polarization and placement strongly affect range.",
				Gotchas: []string{
					"Match polarization (RHCP with RHCP) for best performance.",
					"Avoid shielding by battery or carbon frame.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "Mismatched polarization typically...",
						Options:      []string{"Reduces signal", "Increases thrust", "Improves range"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "Mounting an antenna behind the battery pack will...",
						Options:      []string{"Shield and weaken the signal", "Protect the signal from noise", "Boost the transmit power"},
						CorrectIndex: 0,
					},
				},
			},
			domain.KindCamera: {
				Title:   "FPV Camera",
				Summary: "Captures the live video feed. Latency and dynamic range matter a lot for flying.",
				Gotchas: []string{
					"Camera tilt affects perceived speed and handling.",
					"Power noise can cause rolling lines; use filtering if needed.",
				},
				Questions: []domain.Question{
					{
						Prompt:       "A higher camera tilt is generally used for...",
						Options:      []string{"Faster forward flight", "Hover-only flight", "Lower RPM motors"},
						CorrectIndex: 0,
					},
					{
						Prompt:       "Rolling lines in the video feed usually come from...",
						Options:      []string{"Power noise", "Too much camera tilt", "A locked gimbal"},
						CorrectIndex: 0,
					},
				},
			},
		},
	}
}
