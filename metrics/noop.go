// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopRegistry struct{}

func (noopRegistry) counter(string) CountMeter                 { return noopMeter{} }
func (noopRegistry) counterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopRegistry) gauge(string) GaugeMeter                   { return noopMeter{} }
func (noopRegistry) handler() http.Handler                     { return http.NotFoundHandler() }

func (noopRegistry) histogramVec(string, []string, []int64) HistogramVecMeter {
	return noopMeter{}
}

type noopMeter struct{}

func (noopMeter) Add(int64)                                  {}
func (noopMeter) Set(int64)                                  {}
func (noopMeter) AddWithLabel(int64, map[string]string)      {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
