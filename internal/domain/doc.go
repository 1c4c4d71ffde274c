// Package domain models CAMELS-GB catchment data and the water-balance
// arithmetic applied to it.
//
// # Data Source
//
// CAMELS-GB (Coxon et al., 2020, https://doi.org/10.5194/essd-12-2459-2020)
// ships daily hydrometeorological time series for ~670 gauged catchments in
// Great Britain, one CSV per gauge, plus static catchment attribute tables.
// The adapter in internal/adapter/camels reads those CSVs into the types here.
//
// # Units
//
// Time series columns as delivered:
//
//	precipitation   mm/day   catchment-average rainfall
//	pet             mm/day   potential evapotranspiration
//	discharge_spec  mm/day   specific discharge (flow as depth over the catchment)
//	discharge_vol   m³/s     daily mean volumetric discharge
//
// Topographic attributes carry the drainage area in km². Land-cover attributes
// are percentages of catchment area.
//
// Missing values appear as "NaN" or empty fields and are held as math.NaN().
// Sums skip NaN values; rows with a missing discharge_vol are dropped before
// aggregation (see [DropMissingDischarge]).
//
// # Periods
//
// Water year: 1 October to 30 September, labelled by the year it ends in.
// 15 November 1975 is in water year 1976. See [WaterYear].
//
// Season year: 1 September to 31 August, labelled by the year it ends in. This
// keeps December with the following January and February. Seasons are
// DJF, MAM, JJA and SON. See [SeasonYear] and [SeasonOf].
//
// # Water Balance
//
//	dS/dt = P − E − Q
//
// Over a water year the storage term is assumed negligible, so evaporation is
// estimated as the residual E = P − Q with Q expressed as a depth (mm).
// Discharge volume is converted to depth with the catchment area:
//
//	Q [mm] = V [m³] / A [m²] × 1000
//
// The computed depth should closely match the summed discharge_spec column; the
// difference is reported, not enforced.
//
// # Runoff Ratio and Land Cover
//
// Runoff ratio is ΣQ / ΣP over the full record. Forest cover is the sum of
// deciduous and evergreen woodland percentages, grouped as Low (<10%),
// Medium (10–30%) and High (>30%).
package domain
