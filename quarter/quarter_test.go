// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package quarter_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvratios/quarter"
)

var _ = Describe("Quarter", func() {
	Describe("parsing labels", func() {
		DescribeTable("valid labels",
			func(input string, year, qtr int) {
				label, err := quarter.Parse(input)
				Expect(err).NotTo(HaveOccurred())
				Expect(label).To(Equal(quarter.Label{Year: year, Quarter: qtr}))
			},
			Entry("canonical", "2023Q1", 2023, 1),
			Entry("lower case", "2023q4", 2023, 4),
			Entry("dash separated", "2024-Q2", 2024, 2),
			Entry("padded", "  1990Q3 ", 1990, 3),
		)

		DescribeTable("malformed labels",
			func(input string) {
				_, err := quarter.Parse(input)
				Expect(err).To(MatchError(quarter.ErrInvalidQuarterFormat))
			},
			Entry("empty", ""),
			Entry("quarter zero", "2023Q0"),
			Entry("quarter five", "2023Q5"),
			Entry("missing Q", "20231"),
			Entry("short year", "23Q1"),
			Entry("signed year", "+202Q1"),
			Entry("not a number", "abcdQ1"),
		)

		It("fails fast on the first bad label in a list", func() {
			_, err := quarter.ParseList("2023Q1, 2023Q9, 2024Q1")
			Expect(err).To(MatchError(quarter.ErrInvalidQuarterFormat))
		})

		It("parses a list ignoring blanks", func() {
			labels, err := quarter.ParseList("2023Q1, ,2024Q2")
			Expect(err).NotTo(HaveOccurred())
			Expect(quarter.Strings(labels)).To(Equal([]string{"2023Q1", "2024Q2"}))
		})
	})

	Describe("quarter dates", func() {
		DescribeTable("quarter end dates",
			func(input string, expected time.Time) {
				dt, err := quarter.ToDate(input)
				Expect(err).NotTo(HaveOccurred())
				Expect(dt).To(Equal(expected))
			},
			Entry("Q1", "2023Q1", time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)),
			Entry("Q2", "2023Q2", time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)),
			Entry("Q3", "2023Q3", time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)),
			Entry("Q4", "2023Q4", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		)

		It("rejects malformed labels", func() {
			_, err := quarter.ToDate("2023-13")
			Expect(err).To(MatchError(quarter.ErrInvalidQuarterFormat))
		})

		It("derives the label of any date in the quarter", func() {
			Expect(quarter.FromDate(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)).String()).To(Equal("2022Q1"))
			Expect(quarter.FromDate(time.Date(2022, 5, 15, 0, 0, 0, 0, time.UTC)).String()).To(Equal("2022Q2"))
			Expect(quarter.FromDate(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)).String()).To(Equal("2022Q3"))
			Expect(quarter.FromDate(time.Date(2022, 11, 14, 0, 0, 0, 0, time.UTC)).String()).To(Equal("2022Q4"))
		})

		It("round trips every label from 1990 through 2025", func() {
			for _, label := range quarter.Descending(1990, 2025) {
				Expect(quarter.FromDate(label.Date())).To(Equal(label))
			}
		})
	})

	Describe("ranges", func() {
		It("spans full years and clips partial ones", func() {
			labels, err := quarter.RangeString("2022Q3", "2024Q2")
			Expect(err).NotTo(HaveOccurred())
			Expect(quarter.Strings(labels)).To(Equal([]string{
				"2022Q3", "2022Q4",
				"2023Q1", "2023Q2", "2023Q3", "2023Q4",
				"2024Q1", "2024Q2",
			}))
		})

		It("contains a single quarter when start equals end", func() {
			labels := quarter.Range(quarter.MustParse("2023Q2"), quarter.MustParse("2023Q2"))
			Expect(quarter.Strings(labels)).To(Equal([]string{"2023Q2"}))
		})

		It("is empty when start is after end", func() {
			labels, err := quarter.RangeString("2024Q1", "2023Q4")
			Expect(err).NotTo(HaveOccurred())
			Expect(labels).To(BeEmpty())
		})

		It("is strictly increasing with matching endpoints", func() {
			starts := []string{"1990Q1", "1999Q4", "2010Q2", "2023Q3"}
			ends := []string{"1990Q1", "2001Q1", "2015Q3", "2025Q4"}
			for idx := range starts {
				start := quarter.MustParse(starts[idx])
				end := quarter.MustParse(ends[idx])
				labels := quarter.Range(start, end)
				Expect(labels[0]).To(Equal(start))
				Expect(labels[len(labels)-1]).To(Equal(end))
				for ii := 1; ii < len(labels); ii++ {
					Expect(labels[ii-1].Before(labels[ii])).To(BeTrue())
				}
			}
		})

		It("rejects malformed endpoints", func() {
			_, err := quarter.RangeString("2024Q1", "2024")
			Expect(err).To(MatchError(quarter.ErrInvalidQuarterFormat))
		})

		It("lists quarters newest first", func() {
			labels := quarter.Descending(2023, 2024)
			Expect(labels).To(HaveLen(8))
			Expect(labels[0].String()).To(Equal("2024Q4"))
			Expect(labels[7].String()).To(Equal("2023Q1"))
		})
	})

	It("tests set membership", func() {
		set := quarter.NewSet([]quarter.Label{quarter.MustParse("2024Q1"), quarter.MustParse("2024Q3")})
		Expect(set.Contains(quarter.MustParse("2024Q1"))).To(BeTrue())
		Expect(set.Contains(quarter.MustParse("2024Q2"))).To(BeFalse())
	})
})
