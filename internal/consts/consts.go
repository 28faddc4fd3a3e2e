package consts

const (
	BOLTZMANN = 1.3806226e-23 // Boltzmann constant (J/K)
	KELVIN    = 273.15        // Kelvin temperature (K)

	TNOM = 300.15 // Nominal temperature, 27 degC (K)
)
